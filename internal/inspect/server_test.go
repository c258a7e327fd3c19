package inspect

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "github.com/vango-dev/fiber/internal/errors"
	"github.com/vango-dev/fiber/pkg/host/memhost"
)

const demoTree = `name: demo
children:
  - tag: div
    props: {id: A1}
    children:
      - tag: div
        props: {id: B1}
        children:
          - text: B1
`

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	srv := New(Options{})
	srv.Start(ctx)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return srv, ts
}

type commitBody struct {
	Placements int `json:"placements"`
	Updates    int `json:"updates"`
	Mutations  int `json:"mutations"`
}

func post(t *testing.T, ts *httptest.Server, query, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+"/render"+query, "application/yaml", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func get(t *testing.T, ts *httptest.Server, path string) string {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestRenderAndInspect(t *testing.T) {
	_, ts := newTestServer(t)

	resp := post(t, ts, "?wait=true", demoTree)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first commitBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&first))
	assert.Equal(t, 3, first.Placements)

	assert.Equal(t, `<div id="A1"><div id="B1">B1</div></div>`, get(t, ts, "/tree"))

	var muts struct {
		Commit    commitBody `json:"commit"`
		Mutations []struct {
			Op    string `json:"op"`
			Value string `json:"value"`
		} `json:"mutations"`
	}
	require.NoError(t, json.Unmarshal([]byte(get(t, ts, "/mutations")), &muts))
	ops := map[string]int{}
	for _, m := range muts.Mutations {
		ops[m.Op]++
	}
	assert.Equal(t, 3, ops["AppendChild"])
	assert.Equal(t, 2, ops["CreateElement"])

	resp = post(t, ts, "?wait=true", strings.Replace(demoTree, "- text: B1", "- text: BB", 1))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(get(t, ts, "/mutations")), &muts))
	require.Len(t, muts.Mutations, 1)
	assert.Equal(t, "SetText", muts.Mutations[0].Op)
	assert.Equal(t, "BB", muts.Mutations[0].Value)
	assert.Equal(t, 3, muts.Commit.Updates)

	assert.Contains(t, get(t, ts, "/metrics"), "fiber_work_units_total")
	assert.Equal(t, "ok", get(t, ts, "/healthz"))
}

func TestRenderAccepted(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts, "", demoTree)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body struct {
		Name  string `json:"name"`
		Nodes int    `json:"nodes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "demo", body.Name)
	assert.Equal(t, 3, body.Nodes)

	require.Eventually(t, func() bool {
		resp, err := http.Get(ts.URL + "/tree")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return len(data) > 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRenderRejectsBadTree(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts, "?wait=true", "children:\n  - tag: div\n    colour: red\n")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ferrors.CodeTreeFile, body.Code)
}

func TestRenderReportsHostFailure(t *testing.T) {
	srv, ts := newTestServer(t)
	require.NoError(t, srv.loop.Do(context.Background(), func() {
		srv.tree.FailOn(memhost.OpAppendChild, errors.New("boom"))
	}))

	resp := post(t, ts, "?wait=true", demoTree)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var body errorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, ferrors.CodeHostFailure, body.Code)
	assert.Equal(t, "", get(t, ts, "/tree"))
}

func TestCommitFeed(t *testing.T) {
	srv, ts := newTestServer(t)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return srv.Hub().ClientCount() == 1 },
		5*time.Second, 10*time.Millisecond)

	resp := post(t, ts, "?wait=true", demoTree)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg struct {
		Type   MessageType `json:"type"`
		Commit commitBody  `json:"commit"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageCommit, msg.Type)
	assert.Equal(t, 3, msg.Commit.Placements)
}

func TestCommitFeedReplaysLatest(t *testing.T) {
	srv, ts := newTestServer(t)

	resp := post(t, ts, "?wait=true", demoTree)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	latest, ok := srv.Hub().Latest()
	require.True(t, ok)
	assert.Equal(t, uint64(1), latest.Seq)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	type feedMessage struct {
		Type   MessageType `json:"type"`
		Seq    uint64      `json:"seq"`
		Replay bool        `json:"replay"`
		Commit commitBody  `json:"commit"`
	}
	var replay feedMessage
	require.NoError(t, conn.ReadJSON(&replay))
	assert.Equal(t, MessageCommit, replay.Type)
	assert.True(t, replay.Replay)
	assert.Equal(t, uint64(1), replay.Seq)
	assert.Equal(t, 3, replay.Commit.Placements)

	resp = post(t, ts, "?wait=true", demoTree)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var next feedMessage
	require.NoError(t, conn.ReadJSON(&next))
	assert.False(t, next.Replay)
	assert.Equal(t, uint64(2), next.Seq)
	assert.Equal(t, 0, next.Commit.Placements)
}
