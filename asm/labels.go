package asm

import "otto/inst"

// labelIdent canonicalizes a label the way the original 8080 assemblers did:
// only the first five characters identify it. Both insertion and lookup go
// through this, so LONGLABEL and LONGLE collide on LONGL.
func labelIdent(label string) string {
	if len(label) > 5 {
		return label[:5]
	}
	return label
}

// isLabel reports whether s is a well-formed label: an initial uppercase
// letter, '@' or '?', followed by uppercase letters and digits.
func isLabel(s string) bool {
	if s == "" {
		return false
	}
	switch c := s[0]; {
	case c >= 'A' && c <= 'Z', c == '@', c == '?':
	default:
		return false
	}
	for i := 1; i < len(s); i++ {
		switch c := s[i]; {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// labelTable maps canonicalized label identifiers to addresses.
type labelTable map[string]inst.Address

func (t labelTable) insert(label string, addr inst.Address) bool {
	ident := labelIdent(label)
	if _, dup := t[ident]; dup {
		return false
	}
	t[ident] = addr
	return true
}

func (t labelTable) get(label string) (inst.Address, bool) {
	addr, ok := t[labelIdent(label)]
	return addr, ok
}
