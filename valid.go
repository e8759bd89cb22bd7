package oleread

// Validation selects how much of the container's structure is checked
// beyond what reading the workbook strictly needs.
type Validation int

const (
	ValidationPermissive Validation = iota
	ValidationStrict     Validation = iota
)

func (v Validation) IsStrict() bool {
	return v == ValidationStrict
}

func (v Validation) String() string {
	if v.IsStrict() {
		return "strict"
	}
	return "permissive"
}
