package fractal

import "image"

// Ops understood by the explorer server. Every Command is answered with a Snapshot.
const (
	OpState     = "state"
	OpDraw      = "draw"
	OpStop      = "stop"
	OpPrevious  = "previous"
	OpNext      = "next"
	OpDelete    = "delete"
	OpHelp      = "help"
	OpFields    = "fields"
	OpZoom      = "zoom"
	OpClearZoom = "clear_zoom"
	OpScheme    = "scheme"
	OpJulia     = "julia"
	OpPick      = "pick"
	OpLandmark  = "landmark"
	OpImage     = "image"
)

// Fields are the typed parameters of a view, as text. They are what a
// control surface shows and edits.
type Fields struct {
	RMin       string `json:"rmin"`
	RMax       string `json:"rmax"`
	IMin       string `json:"imin"`
	IMax       string `json:"imax"`
	Iterations string `json:"iterations"`
	JuliaR     string `json:"julia_r"`
	JuliaI     string `json:"julia_i"`
}

// State holds the enable/disable flags of a control surface.
type State struct {
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
	CanDelete   bool `json:"can_delete"`
	Running     bool `json:"running"`
	OutOfMemory bool `json:"out_of_memory"`
	Julia       bool `json:"julia"`
	Help        bool `json:"help"`
}

// Command is sent by a client, one JSON object per line. A non-zero ID is
// echoed in the reply so it can be told apart from pushed snapshots.
type Command struct {
	ID       uint64           `json:"id,omitempty"`
	Op       string           `json:"op"`
	Fields   *Fields          `json:"fields,omitempty"`
	Zoom     *image.Rectangle `json:"zoom,omitempty"`
	Scheme   string           `json:"scheme,omitempty"`
	Julia    bool             `json:"julia,omitempty"`
	X        int              `json:"x,omitempty"`
	Y        int              `json:"y,omitempty"`
	Landmark string           `json:"landmark,omitempty"`
}

// Snapshot describes the session as seen by a display and control surface.
// Pushed snapshots have a zero ID.
type Snapshot struct {
	ID         uint64           `json:"id,omitempty"`
	Generation uint64           `json:"generation"`
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Progress   int              `json:"progress"`
	Status     string           `json:"status"`
	Status2    string           `json:"status2"`
	State      State            `json:"state"`
	Fields     Fields           `json:"fields"`
	Scheme     string           `json:"scheme"`
	Schemes    []string         `json:"schemes,omitempty"`
	Landmarks  []string         `json:"landmarks,omitempty"`
	Zoom       *image.Rectangle `json:"zoom,omitempty"`
	Error      string           `json:"error,omitempty"`
	PNG        []byte           `json:"png,omitempty"`
}
