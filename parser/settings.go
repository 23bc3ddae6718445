package parser

// ParseSettings is the case-folding policy applied to tag and attribute
// names when tokens are turned into elements.
type ParseSettings struct {
	PreserveTagCase       bool
	PreserveAttributeCase bool
}

var (
	// HTMLSettings folds tag and attribute names to lower case.
	HTMLSettings = ParseSettings{}
	// PreserveCaseSettings keeps names as written, for XML-ish input.
	PreserveCaseSettings = ParseSettings{PreserveTagCase: true, PreserveAttributeCase: true}
)

func (s ParseSettings) normalizeTag(name string) string {
	if s.PreserveTagCase {
		return name
	}
	return asciiLower(name)
}

func (s ParseSettings) normalizeAttribute(name string) string {
	if s.PreserveAttributeCase {
		return name
	}
	return asciiLower(name)
}
