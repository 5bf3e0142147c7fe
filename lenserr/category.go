package lenserr

// Category groups failure kinds by when they can occur.
type Category string

const (
	// CategoryLoad covers malformed schema or seed input. Fatal to a snapshot build.
	CategoryLoad Category = "load"

	// CategoryResolution covers ambiguity the loaded data does not resolve.
	// Per call; the snapshot stays valid.
	CategoryResolution Category = "resolution"

	// CategoryInput covers malformed requests (unknown names, empty sets).
	CategoryInput Category = "input"
)

// String returns the string representation of the category
func (c Category) String() string {
	return string(c)
}

// Kind identifies one failure in the taxonomy.
type Kind int

// Schema graph kinds
const (
	KindUnknown Kind = iota
	KindDuplicateNode
	KindDanglingEdgeReference
	KindInvalidJoinCost

	// Concept registry kinds
	KindDuplicateConcept
	KindInvalidConceptType
	KindUnknownConceptReference
	KindCyclicConceptHierarchy
	KindDuplicateBinding
	KindAmbiguousOrMissingPrimaryMeaning

	// Perspective registry kinds
	KindDuplicatePerspective
	KindUnknownPerspectiveReference
	KindInvalidRelationshipType
	KindInvalidPriorityWeight

	// Intent registry kinds
	KindDuplicateIntent
	KindUnknownIntentReference
	KindInvalidWeightValue
	KindDuplicateWeight
	KindConflictingElevation

	// Seed documents
	KindIncompatibleSeedFormat

	// Resolution kinds
	KindNoPathFound
	KindNoActiveConceptAfterSuppression
	KindPerspectiveConceptConflict
	KindUnboundField

	// Input kinds
	KindUnknownTable
	KindUnknownIntent
	KindEmptyTableSet
)

var kindNames = map[Kind]string{
	KindUnknown:                          "Unknown",
	KindDuplicateNode:                    "DuplicateNode",
	KindDanglingEdgeReference:            "DanglingEdgeReference",
	KindInvalidJoinCost:                  "InvalidJoinCost",
	KindDuplicateConcept:                 "DuplicateConcept",
	KindInvalidConceptType:               "InvalidConceptType",
	KindUnknownConceptReference:          "UnknownConceptReference",
	KindCyclicConceptHierarchy:           "CyclicConceptHierarchy",
	KindDuplicateBinding:                 "DuplicateBinding",
	KindAmbiguousOrMissingPrimaryMeaning: "AmbiguousOrMissingPrimaryMeaning",
	KindDuplicatePerspective:             "DuplicatePerspective",
	KindUnknownPerspectiveReference:      "UnknownPerspectiveReference",
	KindInvalidRelationshipType:          "InvalidRelationshipType",
	KindInvalidPriorityWeight:            "InvalidPriorityWeight",
	KindDuplicateIntent:                  "DuplicateIntent",
	KindUnknownIntentReference:           "UnknownIntentReference",
	KindInvalidWeightValue:               "InvalidWeightValue",
	KindDuplicateWeight:                  "DuplicateWeight",
	KindConflictingElevation:             "ConflictingElevation",
	KindIncompatibleSeedFormat:           "IncompatibleSeedFormat",
	KindNoPathFound:                      "NoPathFound",
	KindNoActiveConceptAfterSuppression:  "NoActiveConceptAfterSuppression",
	KindPerspectiveConceptConflict:       "PerspectiveConceptConflict",
	KindUnboundField:                     "UnboundField",
	KindUnknownTable:                     "UnknownTable",
	KindUnknownIntent:                    "UnknownIntent",
	KindEmptyTableSet:                    "EmptyTableSet",
}

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// Category reports when a kind can occur.
func (k Kind) Category() Category {
	switch k {
	case KindNoPathFound, KindNoActiveConceptAfterSuppression,
		KindPerspectiveConceptConflict, KindUnboundField:
		return CategoryResolution
	case KindUnknownTable, KindUnknownIntent, KindEmptyTableSet:
		return CategoryInput
	default:
		return CategoryLoad
	}
}
