package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	ForceQuit key.Binding
	Back      key.Binding
	Submit    key.Binding
	NextField key.Binding
	PrevField key.Binding
	NextPage  key.Binding
	PrevPage  key.Binding
	SwapAuth  key.Binding
	Refresh   key.Binding
	Logout    key.Binding
	Up        key.Binding
	Down      key.Binding

	Search   key.Binding
	Buy      key.Binding
	Sell     key.Binding
	Watch    key.Binding
	Add      key.Binding
	Remove   key.Binding
	Clear    key.Binding
	Trade    key.Binding
	Deposit  key.Binding
	Withdraw key.Binding
	Yes      key.Binding
	No       key.Binding
}

var keys = keyMap{
	Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
	ForceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
	NextField: key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField: key.NewBinding(key.WithKeys("shift+tab", "up")),
	NextPage:  key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab", "next page")),
	PrevPage:  key.NewBinding(key.WithKeys("shift+tab", "left")),
	SwapAuth:  key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "login/register")),
	Refresh:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Logout:    key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "logout")),
	Up:        key.NewBinding(key.WithKeys("up", "k")),
	Down:      key.NewBinding(key.WithKeys("down", "j")),

	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Buy:      key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "buy")),
	Sell:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sell")),
	Watch:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "watch/unwatch")),
	Add:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
	Remove:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
	Clear:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
	Trade:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "trade")),
	Deposit:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add funds")),
	Withdraw: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "withdraw")),
	Yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "yes")),
	No:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "no")),
}
