package engine

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func ParseKey(s string) (Key, bool) {
	switch Key(s) {
	case KeyLeft, KeyRight, KeyDown, KeyUp, KeyRestart:
		return Key(s), true
	default:
		return KeyNone, false
	}
}

// NopDisplay discards every draw.
type NopDisplay struct{}

func (NopDisplay) SetMainCell(x, y int, c Color)    {}
func (NopDisplay) SetPreviewCell(x, y int, c Color) {}
