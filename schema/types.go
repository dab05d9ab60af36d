package schema

// Severity classifies a player log message.
type Severity string

const (
	// SeverityFatal marks unrecoverable player errors.
	SeverityFatal Severity = "fatal"
	// SeverityError marks errors.
	SeverityError Severity = "error"
	// SeverityWarn marks warnings.
	SeverityWarn Severity = "warn"
	// SeverityInfo marks informational messages.
	SeverityInfo Severity = "info"
	// SeverityStatus marks periodic status lines.
	SeverityStatus Severity = "status"
	// SeverityVerbose marks verbose diagnostics.
	SeverityVerbose Severity = "v"
	// SeverityDebug marks debug diagnostics.
	SeverityDebug Severity = "debug"
	// SeverityTrace marks trace diagnostics.
	SeverityTrace Severity = "trace"
)

// LogEvent is a diagnostic line emitted by the player.
type LogEvent struct {
	Prefix string
	Level  Severity
	Text   string
}

// CommandArg describes one argument of a player command.
type CommandArg struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
	Variadic bool   `json:"variadic,omitempty"`
}

// CommandDef describes a player command and its argument list.
type CommandDef struct {
	Name string       `json:"name"`
	Args []CommandArg `json:"args,omitempty"`
}

// Geometry is the on-screen viewport available to the overlay renderer,
// in scaled character cells plus the raw OSD dimensions.
type Geometry struct {
	Width   int
	Height  int
	MarginX int
	MarginY int
	Scale   float64
}

// Columns reports how many character cells fit horizontally for the
// given cell width, never less than 1.
func (g Geometry) Columns(cellWidth int) int {
	if cellWidth <= 0 {
		cellWidth = 1
	}
	cols := (g.Width - 2*g.MarginX) / cellWidth
	if cols < 1 {
		cols = 1
	}
	return cols
}

// Rows reports how many character cells fit vertically for the given
// cell height, never less than 1.
func (g Geometry) Rows(cellHeight int) int {
	if cellHeight <= 0 {
		cellHeight = 1
	}
	rows := (g.Height - 2*g.MarginY) / cellHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}
