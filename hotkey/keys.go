package hotkey

import "strings"

// Key codes (Linux evdev KEY_* constants)
const (
	KeyEsc   = 1
	KeyEnter = 28
	KeySpace = 57
	KeyF1    = 59
	KeyF2    = 60
	KeyF3    = 61
	KeyF4    = 62
	KeyF5    = 63
	KeyF6    = 64
	KeyF7    = 65
	KeyF8    = 66
	KeyF9    = 67
	KeyF10   = 68
	KeyF11   = 87
	KeyF12   = 88
	KeyPause = 119

	// KeyMax is the highest key code the kernel defines.
	KeyMax = 0x2ff
)

var keyNames = map[string]uint16{
	"ESC": KeyEsc, "1": 2, "2": 3, "3": 4, "4": 5, "5": 6, "6": 7, "7": 8, "8": 9, "9": 10, "0": 11,
	"MINUS": 12, "EQUAL": 13, "BACKSPACE": 14, "TAB": 15,
	"Q": 16, "W": 17, "E": 18, "R": 19, "T": 20, "Y": 21, "U": 22, "I": 23, "O": 24, "P": 25,
	"LEFTBRACE": 26, "RIGHTBRACE": 27, "ENTER": KeyEnter, "LEFTCTRL": 29,
	"A": 30, "S": 31, "D": 32, "F": 33, "G": 34, "H": 35, "J": 36, "K": 37, "L": 38,
	"SEMICOLON": 39, "APOSTROPHE": 40, "GRAVE": 41, "LEFTSHIFT": 42, "BACKSLASH": 43,
	"Z": 44, "X": 45, "C": 46, "V": 47, "B": 48, "N": 49, "M": 50,
	"COMMA": 51, "DOT": 52, "SLASH": 53, "RIGHTSHIFT": 54, "KPASTERISK": 55, "LEFTALT": 56,
	"SPACE": KeySpace, "CAPSLOCK": 58,
	"F1": KeyF1, "F2": KeyF2, "F3": KeyF3, "F4": KeyF4, "F5": KeyF5, "F6": KeyF6,
	"F7": KeyF7, "F8": KeyF8, "F9": KeyF9, "F10": KeyF10, "F11": KeyF11, "F12": KeyF12,
	"NUMLOCK": 69, "SCROLLLOCK": 70, "RIGHTCTRL": 97, "SYSRQ": 99, "RIGHTALT": 100,
	"HOME": 102, "UP": 103, "PAGEUP": 104, "LEFT": 105, "RIGHT": 106, "END": 107,
	"DOWN": 108, "PAGEDOWN": 109, "INSERT": 110, "DELETE": 111,
	"MUTE": 113, "VOLUMEDOWN": 114, "VOLUMEUP": 115, "PAUSE": KeyPause,
	"LEFTMETA": 125, "RIGHTMETA": 126, "COMPOSE": 127,
	"F13": 183, "F14": 184, "F15": 185, "F16": 186, "F17": 187, "F18": 188,
	"F19": 189, "F20": 190, "F21": 191, "F22": 192, "F23": 193, "F24": 194,
}

// KeyCode looks up a key by its evdev name, with or without the KEY_ prefix.
func KeyCode(name string) (uint16, bool) {
	name = strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(name)), "KEY_")
	code, ok := keyNames[name]
	return code, ok
}

// KeyName returns the evdev name of code, or "" if it has none in the table.
func KeyName(code uint16) string {
	for name, c := range keyNames {
		if c == code {
			return "KEY_" + name
		}
	}
	return ""
}
