package config

// ManifestFileName is the manifest looked up by FindManifest.
const ManifestFileName = "shapeshift.yaml"

// ManifestFileNames are all recognized manifest file names, in lookup order.
var ManifestFileNames = []string{"shapeshift.yaml", "shapeshift.yml", ".shapeshift.yaml"}

// Names used in synthesized implementations
const (
	BindingName     = "val"
	ScrutineeName   = "self"
	FallbackMessage = "no dispatch arm matched"
	ArgNamePrefix   = "arg"
)

// Host type names the default derivation knows about
const (
	OptionTypeName = "Option"
	NoneCtorName   = "None"
	DefaultExpr    = "Default::default()"
	UnitExpr       = "()"
)

// DefaultableTypes are owned types whose `Default` value is used as the
// fallback of a dispatch arm.
var DefaultableTypes = []string{
	"String", "std::string::String",
	"Vec", "std::vec::Vec",
	"HashMap", "std::collections::HashMap",
	"BTreeMap", "std::collections::BTreeMap",
	"bool", "char",
	"i8", "i16", "i32", "i64", "i128", "isize",
	"u8", "u16", "u32", "u64", "u128", "usize",
	"f32", "f64",
}

// DefaultOutputFile is where `generate` writes when the manifest names none.
const DefaultOutputFile = "shapeshift_gen.rs"

// GeneratedHeader starts every generated file.
const GeneratedHeader = "// Code generated by shapeshift. DO NOT EDIT."
