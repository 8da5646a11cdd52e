package studio

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Generate  key.Binding
	Save      key.Binding
	Copy      key.Binding
	Clear     key.Binding
	Size      key.Binding
	Quality   key.Binding
	Style     key.Binding
	NextFocus key.Binding
	PrevFocus key.Binding
	Up        key.Binding
	Down      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Generate:  key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "generate")),
		Save:      key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save current")),
		Copy:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy to prompt")),
		Clear:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "clear history")),
		Size:      key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "aspect ratio")),
		Quality:   key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "quality")),
		Style:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "style preset")),
		NextFocus: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		PrevFocus: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Up:        key.NewBinding(key.WithKeys("up", "k")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Generate, k.Save, k.Copy, k.Clear},
		{k.Size, k.Quality, k.Style},
		{k.NextFocus, k.PrevFocus, k.Quit},
	}
}
