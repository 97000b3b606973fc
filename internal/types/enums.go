package types

type NamingSystem string

const (
	NamingMojang       NamingSystem = "mojang"
	NamingIntermediary NamingSystem = "intermediary"
	NamingSearge       NamingSystem = "searge"
	NamingSpigot       NamingSystem = "spigot"
)

// NamingSystems returns every naming system in display and tie-break
// order.
func NamingSystems() []NamingSystem {
	return []NamingSystem{NamingMojang, NamingIntermediary, NamingSearge, NamingSpigot}
}

func ParseNamingSystem(value string) (NamingSystem, bool) {
	for _, system := range NamingSystems() {
		if string(system) == value {
			return system, true
		}
	}
	return "", false
}

// Rank is the position of the system in display order, or -1.
func (s NamingSystem) Rank() int {
	for idx, system := range NamingSystems() {
		if system == s {
			return idx
		}
	}
	return -1
}

type MemberKind string

const (
	MemberKindField  MemberKind = "field"
	MemberKindMethod MemberKind = "method"
)

// ComparisonKey names the value compared between adjacent versions when
// extending an ancestor tree: either the obfuscated name or the alias of
// one naming system.
type ComparisonKey string

const ComparisonKeyObfuscated ComparisonKey = "obfuscated"

func KeyForSystem(system NamingSystem) ComparisonKey {
	return ComparisonKey(system)
}

func (k ComparisonKey) System() (NamingSystem, bool) {
	if k == ComparisonKeyObfuscated {
		return "", false
	}
	return ParseNamingSystem(string(k))
}

func (k ComparisonKey) Valid() bool {
	if k == ComparisonKeyObfuscated {
		return true
	}
	_, ok := k.System()
	return ok
}

type LoadMode string

const (
	LoadModeStrict  LoadMode = "strict"
	LoadModeDegrade LoadMode = "degrade"
)
