package camera

import "github.com/Carmen-Shannon/oxy-instanced/common"

// Command is a camera movement command produced from raw key input.
type Command int

const (
	CommandMoveUp Command = iota
	CommandMoveDown
	CommandForward
	CommandBackward
	CommandLeft
	CommandRight

	commandCount
)

var commandNames = [commandCount]string{
	CommandMoveUp:   "MoveUp",
	CommandMoveDown: "MoveDown",
	CommandForward:  "Forward",
	CommandBackward: "Backward",
	CommandLeft:     "Left",
	CommandRight:    "Right",
}

func (c Command) String() string {
	if c < 0 || c >= commandCount {
		return "Unknown"
	}
	return commandNames[c]
}

// KeyMap maps GLFW key codes to camera commands.
type KeyMap map[uint32]Command

// DefaultKeyMap returns the standard bindings: Space and LeftShift for up/down,
// WASD and the arrow keys for forward, left, backward and right.
//
// Returns:
//   - KeyMap: a new map the caller may modify
func DefaultKeyMap() KeyMap {
	return KeyMap{
		common.KeySpace:     CommandMoveUp,
		common.KeyLeftShift: CommandMoveDown,
		common.KeyW:         CommandForward,
		common.KeyUp:        CommandForward,
		common.KeyA:         CommandLeft,
		common.KeyLeft:      CommandLeft,
		common.KeyS:         CommandBackward,
		common.KeyDown:      CommandBackward,
		common.KeyD:         CommandRight,
		common.KeyRight:     CommandRight,
	}
}

// Lookup returns the command bound to code.
//
// Parameters:
//   - code: the key code
//
// Returns:
//   - Command: the bound command
//   - bool: false if the key is unbound
func (m KeyMap) Lookup(code uint32) (Command, bool) {
	cmd, ok := m[code]
	return cmd, ok
}
