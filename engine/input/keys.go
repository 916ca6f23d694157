package input

// Key is a keyboard key code. Values match GLFW key codes, which use ASCII
// for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key int

const (
	KeySpace Key = 32
	Key0     Key = 48
	Key1     Key = 49
	Key2     Key = 50
	Key3     Key = 51
	Key4     Key = 52
	Key5     Key = 53
	Key6     Key = 54
	Key7     Key = 55
	Key8     Key = 56
	Key9     Key = 57
	KeyA     Key = 65
	KeyB     Key = 66
	KeyC     Key = 67
	KeyD     Key = 68
	KeyE     Key = 69
	KeyF     Key = 70
	KeyG     Key = 71
	KeyL     Key = 76
	KeyM     Key = 77
	KeyQ     Key = 81
	KeyR     Key = 82
	KeyS     Key = 83
	KeyT     Key = 84
	KeyV     Key = 86
	KeyW     Key = 87
	KeyX     Key = 88
	KeyZ     Key = 90

	KeyEsc       Key = 256
	KeyEnter     Key = 257
	KeyTab       Key = 258
	KeyBackspace Key = 259
	KeyRight     Key = 262
	KeyLeft      Key = 263
	KeyDown      Key = 264
	KeyUp        Key = 265
	KeyPageUp    Key = 266
	KeyPageDown  Key = 267
	KeyF1        Key = 290

	KeyLeftShift  Key = 340
	KeyLeftCtrl   Key = 341
	KeyLeftAlt    Key = 342
	KeyRightShift Key = 344
	KeyRightCtrl  Key = 345
	KeyRightAlt   Key = 346

	// KeyLast is the highest key code tracked.
	KeyLast Key = 348
)

// MouseButton is a mouse button index (GLFW numbering).
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
	MouseButton4
	MouseButton5
	MouseButton6
	MouseButton7
	MouseButton8

	mouseButtonCount = 8
)

// GamepadButton is a button of a standard gamepad mapping (GLFW numbering).
type GamepadButton int

const (
	GamepadA GamepadButton = iota
	GamepadB
	GamepadX
	GamepadY
	GamepadLeftBumper
	GamepadRightBumper
	GamepadBack
	GamepadStart
	GamepadGuide
	GamepadLeftThumb
	GamepadRightThumb
	GamepadDpadUp
	GamepadDpadRight
	GamepadDpadDown
	GamepadDpadLeft

	gamepadButtonCount = 15
)

// GamepadAxis is an analog axis of a standard gamepad mapping (GLFW numbering).
// Stick Y axes are positive downward; triggers rest at -1.
type GamepadAxis int

const (
	GamepadLeftX GamepadAxis = iota
	GamepadLeftY
	GamepadRightX
	GamepadRightY
	GamepadLeftTrigger
	GamepadRightTrigger

	gamepadAxisCount = 6
)
