package core

// Key codes carried in EventContext.Data.U16[0]. Values match GLFW's.
type Key uint16

const (
	KEY_SPACE  Key = 32
	KEY_A      Key = 65
	KEY_D      Key = 68
	KEY_E      Key = 69
	KEY_Q      Key = 81
	KEY_R      Key = 82
	KEY_S      Key = 83
	KEY_W      Key = 87
	KEY_ESCAPE Key = 256
	KEY_RIGHT  Key = 262
	KEY_LEFT   Key = 263
	KEY_DOWN   Key = 264
	KEY_UP     Key = 265
)
