package engine

// Truth is the outcome of testing a predicate against an item.
//
// Unknown means the catalog lacks the data to decide. It is never folded into False.
type Truth uint8

const (
	Unknown Truth = iota
	True
	False
)

func (t Truth) String() string {
	switch t {
	case Unknown:
		return "unknown"
	case True:
		return "true"
	case False:
		return "false"
	}
	return "invalid"
}

// FromBool maps an observed boolean to a known Truth.
func FromBool(b bool) Truth {
	if b {
		return True
	}
	return False
}

// Not negates a known Truth and keeps Unknown as is.
func Not(t Truth) Truth {
	switch t {
	case True:
		return False
	case False:
		return True
	case Unknown:
		return Unknown
	}
	return Unknown
}

// AnyOf combines sub-checks with logical OR: True if any is True, Unknown only if all are Unknown and False otherwise.
func AnyOf(results ...Truth) Truth {
	sawFalse := false
	for _, r := range results {
		switch r {
		case True:
			return True
		case False:
			sawFalse = true
		case Unknown:
		}
	}
	if sawFalse {
		return False
	}
	return Unknown
}
