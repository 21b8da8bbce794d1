package annotator

import "strings"

type KeyEvent struct {
	Key   string `json:"key"`
	Ctrl  bool   `json:"ctrl"`
	Shift bool   `json:"shift"`
	Meta  bool   `json:"meta"`
}

type keyAction int

const (
	keyNone keyAction = iota
	keyUndo
	keyRedo
	keyDelete
	keyCancel
	keySwitchBox
	keySwitchLandmark
	keySwitchSelect
)

var modeForKey = map[keyAction]Mode{
	keySwitchBox:      ModeBox,
	keySwitchLandmark: ModeLandmark,
	keySwitchSelect:   ModeSelect,
}

// action maps a key press to an editor command. Meta is treated like Ctrl.
func (e KeyEvent) action() keyAction {
	key := strings.ToLower(e.Key)
	mod := e.Ctrl || e.Meta

	switch {
	case mod && key == "z" && e.Shift:
		return keyRedo
	case mod && key == "z":
		return keyUndo
	case mod && key == "y":
		return keyRedo
	case mod:
		return keyNone
	}

	switch key {
	case "delete", "backspace":
		return keyDelete
	case "escape", "esc":
		return keyCancel
	case "b":
		return keySwitchBox
	case "l":
		return keySwitchLandmark
	case "s":
		return keySwitchSelect
	}
	return keyNone
}
