package scheduler

// CommandType names a control command.
type CommandType string

const (
	CommandStop CommandType = "stop"
	CommandNext CommandType = "next"
	CommandLoad CommandType = "load"
)

// Command is a request from the control API to the loop.
type Command struct {
	Type CommandType `json:"type"`
	Args []string    `json:"args"`
}

// Status is a snapshot of what the loop is showing.
type Status struct {
	Wallpaper string `json:"current_wallpaper"`
	Animation string `json:"animation"`
	Finished  bool   `json:"finished"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	FPS       int    `json:"fps"`
	Idle      bool   `json:"idle"`
	Frames    uint64 `json:"frames"`
}
