package assets

// DefaultStyleName is the name of the built-in CSS style.
const DefaultStyleName = "default"

// CopyCodeScriptName is the name of the script that wires copy-code controls
// to the clipboard.
const CopyCodeScriptName = "copy-code"

// defaultLoader is the package-level embedded loader.
var defaultLoader = NewEmbeddedLoader()

// CopyCodeScript returns the embedded clipboard handler.
// The script ships with the binary, so a failure here is a build defect.
func CopyCodeScript() string {
	src, err := defaultLoader.LoadScript(CopyCodeScriptName)
	if err != nil {
		panic("assets: embedded copy-code script missing: " + err.Error())
	}
	return src
}
