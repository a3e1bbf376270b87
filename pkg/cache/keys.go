package cache

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a layout computed from a diagram with the given
	// content hash.
	LayoutKey(diagramHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies one rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts lists the inputs besides the diagram that change a layout.
type LayoutKeyOpts struct {
	Strategy string `json:"strategy"`
	Palette  string `json:"palette"`
	CanvasW  int64  `json:"canvas_w"`
	CanvasH  int64  `json:"canvas_h"`
	Version  string `json:"version,omitempty"`
}

// ArtifactKeyOpts lists the inputs besides the layout that change an
// artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Chamfers bool   `json:"chamfers,omitempty"`
	Width    int    `json:"width,omitempty"`
	Version  string `json:"version,omitempty"`
	// Reports hashes gate findings embedded in the artifact, if any.
	Reports string `json:"reports,omitempty"`
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(diagramHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", diagramHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact:"+opts.Format, layoutHash, opts)
}
