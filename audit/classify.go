package audit

// Completeness of one observed sequence folder. The underlying values are the
// ones written to the completeness_flag column.
type Completeness int

const (
	Unknown    Completeness = -1
	Incomplete Completeness = 0
	Complete   Completeness = 1
)

func (c Completeness) Flag() int {
	return int(c)
}

func (c Completeness) String() string {
	switch c {
	case Complete:
		return "complete"
	case Incomplete:
		return "incomplete"
	}

	return "unknown"
}

// Classify compares an observed file count with the catalog. Acquisitions
// sometimes write extra files, so anything at or above the expected count is
// Complete; only under-counting is a failure. Keys absent from the catalog
// are Unknown regardless of the count.
func Classify(cat Catalog, key string, observed int) Completeness {
	expected, exists := cat.Lookup(key)
	if !exists {
		return Unknown
	}

	if observed >= expected {
		return Complete
	}

	return Incomplete
}
