package vdom

import "strings"

// EventPrefix marks props that bind event handlers rather than attributes.
const EventPrefix = "on"

// On binds handler to the named event ("click" becomes "onclick").
func On(name string, handler any) EventHandler {
	return EventHandler{Event: EventPrefix + strings.ToLower(name), Handler: handler}
}

// OnClick handles click events.
func OnClick(handler any) EventHandler { return On("click", handler) }

// OnInput handles input events.
func OnInput(handler any) EventHandler { return On("input", handler) }

// OnChange handles change events.
func OnChange(handler any) EventHandler { return On("change", handler) }

// IsEventKey returns true if the prop key binds an event handler. The check is
// case-insensitive so onclick, onClick and ONCLICK all count.
func IsEventKey(key string) bool {
	return len(key) > len(EventPrefix) && strings.EqualFold(key[:len(EventPrefix)], EventPrefix)
}
