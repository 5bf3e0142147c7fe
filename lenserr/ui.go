package lenserr

import "sort"

// hints tell the operator which rule or record resolves the failure.
var hints = map[Kind]string{
	KindDuplicateNode:                    "each table_name may appear once in the schema metadata",
	KindDanglingEdgeReference:            "add the missing table as a schema node or drop the edge",
	KindInvalidJoinCost:                  "edge weight must be a positive integer (omit for 1)",
	KindCyclicConceptHierarchy:           "a concept may refine at most one parent and the chain must end",
	KindAmbiguousOrMissingPrimaryMeaning: "mark exactly one binding of the field with is_primary_meaning",
	KindInvalidWeightValue:               "activation weights are -1 (suppress), 0 (neutral) or 1 (elevate)",
	KindConflictingElevation:             "an intent may elevate only one concept bound to the same field",
	KindIncompatibleSeedFormat:           "upgrade the seed document to a supported format_version",
	KindNoPathFound:                      "add a join relationship connecting the tables",
	KindNoActiveConceptAfterSuppression:  "elevate an alternative concept for this intent or stop suppressing the primary meaning",
	KindPerspectiveConceptConflict:       "align the intent's concept weights with the perspective or drop the perspective weight",
	KindUnboundField:                     "bind the field to at least one concept",
	KindUnknownTable:                     "check the table name against the schema metadata",
	KindUnknownIntent:                    "check the intent name against the seed definitions",
	KindEmptyTableSet:                    "pass at least one table",
}

// Hint returns operator guidance for the failure, or "".
func (e *Error) Hint() string {
	return hints[e.Kind]
}

// ToLogFields converts error to structured log fields
// This is useful for passing to logger.Errorw()
func (e *Error) ToLogFields() []interface{} {
	fields := []interface{}{
		"error_kind", e.Kind.String(),
		"error_category", e.Category().String(),
		"error_message", e.Error(),
	}

	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, k, e.Context[k])
	}

	return fields
}

// ToMap formats the error for JSON responses.
func (e *Error) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"error":    e.Error(),
		"kind":     e.Kind.String(),
		"category": e.Category().String(),
	}
	if len(e.Context) > 0 {
		ctx := make(map[string]string, len(e.Context))
		for k, v := range e.Context {
			ctx[k] = v
		}
		m["context"] = ctx
	}
	if h := e.Hint(); h != "" {
		m["hint"] = h
	}
	return m
}
