package testing

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/teranos/schemalens/internal/util"
	"github.com/teranos/schemalens/seed"
)

// Concept seed ids used by the manufacturing fixture.
const (
	ConceptSeverityQuality     int64 = 1
	ConceptSeverityCost        int64 = 2
	ConceptSeverityCustomer    int64 = 3
	ConceptDefectImpact        int64 = 4
	ConceptOnTimeContractual   int64 = 5
	ConceptOnTimeOperational   int64 = 6
	PerspectiveQuality         int64 = 1
	PerspectiveFinance         int64 = 2
	PerspectiveCustomerSuccess int64 = 3
	IntentDefectCostAnalysis   int64 = 1
	IntentDefectQualityTrend   int64 = 2
	IntentSupplierScorecard    int64 = 3
	IntentDeliveryOpsReview    int64 = 4
	IntentQualityCostCrossRef  int64 = 5
)

// ManufacturingRecords is a small supplier-quality dataset.
//
// product_defects.severity carries three meanings (quality is primary) and
// daily_deliveries.on_time_rate two (contractual is primary). archive_logs
// has no edges. suppliers reaches product_defects at cost 3 by two routes;
// the daily_deliveries route wins the tie-break.
func ManufacturingRecords() *seed.Records {
	return &seed.Records{
		FormatVersion: "1.0.0",
		Nodes: []seed.SchemaNode{
			{TableName: "suppliers", TableType: "dimension", Description: "Approved vendors"},
			{TableName: "daily_deliveries", TableType: "fact", Description: "Inbound deliveries per supplier per day"},
			{TableName: "products", TableType: "dimension", Description: "Manufactured parts"},
			{TableName: "product_defects", TableType: "fact", Description: "Inspection findings"},
			{TableName: "archive_logs", TableType: "log", Description: "Cold storage of retired events"},
		},
		Edges: []seed.SchemaEdge{
			{FromTable: "suppliers", ToTable: "daily_deliveries", RelationshipType: "one_to_many", JoinColumn: "supplier_id", Weight: 1},
			{FromTable: "suppliers", ToTable: "products", RelationshipType: "one_to_many", JoinColumn: "supplier_id", Weight: 2},
			{FromTable: "daily_deliveries", ToTable: "products", RelationshipType: "many_to_one", JoinColumn: "product_id", Weight: 1},
			{FromTable: "products", ToTable: "product_defects", RelationshipType: "one_to_many", JoinColumn: "product_id", Weight: 1,
				NaturalLanguageAlias: "defects found on a part"},
		},
		Concepts: []seed.Concept{
			{ID: ConceptSeverityQuality, Name: "defect_severity_quality", ConceptType: "classification", Domain: "quality"},
			{ID: ConceptSeverityCost, Name: "defect_severity_cost", ConceptType: "metric", Domain: "finance", ParentConceptID: util.Ptr(ConceptDefectImpact)},
			{ID: ConceptSeverityCustomer, Name: "defect_severity_customer", ConceptType: "outcome", Domain: "customer"},
			{ID: ConceptDefectImpact, Name: "defect_impact", ConceptType: "outcome", Domain: "finance"},
			{ID: ConceptOnTimeContractual, Name: "on_time_rate_contractual", ConceptType: "metric", Domain: "procurement"},
			{ID: ConceptOnTimeOperational, Name: "on_time_rate_operational", ConceptType: "metric", Domain: "operations"},
		},
		ConceptBindings: []seed.ConceptFieldBinding{
			{TableName: "product_defects", FieldName: "severity", ConceptID: ConceptSeverityQuality, IsPrimaryMeaning: true, ContextHint: "inspection grade"},
			{TableName: "product_defects", FieldName: "severity", ConceptID: ConceptSeverityCost},
			{TableName: "product_defects", FieldName: "severity", ConceptID: ConceptSeverityCustomer},
			{TableName: "daily_deliveries", FieldName: "on_time_rate", ConceptID: ConceptOnTimeContractual, IsPrimaryMeaning: true},
			{TableName: "daily_deliveries", FieldName: "on_time_rate", ConceptID: ConceptOnTimeOperational},
		},
		Perspectives: []seed.Perspective{
			{ID: PerspectiveQuality, Name: "quality_engineering", StakeholderRole: "quality engineer", PriorityFocus: "defect reduction"},
			{ID: PerspectiveFinance, Name: "finance", StakeholderRole: "controller", PriorityFocus: "cost of poor quality"},
			{ID: PerspectiveCustomerSuccess, Name: "customer_success", StakeholderRole: "account manager", PriorityFocus: "customer impact"},
		},
		PerspectiveWeights: []seed.PerspectiveConceptWeight{
			{PerspectiveID: PerspectiveQuality, ConceptID: ConceptSeverityQuality, RelationshipType: "USES_DEFINITION", PriorityWeight: 10},
			{PerspectiveID: PerspectiveQuality, ConceptID: ConceptSeverityCost, RelationshipType: "SUPPRESSES", PriorityWeight: 3},
			{PerspectiveID: PerspectiveFinance, ConceptID: ConceptSeverityCost, RelationshipType: "EMPHASIZES", PriorityWeight: 8},
			{PerspectiveID: PerspectiveFinance, ConceptID: ConceptOnTimeContractual, RelationshipType: "USES_DEFINITION", PriorityWeight: 5},
			{PerspectiveID: PerspectiveCustomerSuccess, ConceptID: ConceptSeverityCustomer, RelationshipType: "EMPHASIZES", PriorityWeight: 7},
		},
		Intents: []seed.Intent{
			{ID: IntentDefectCostAnalysis, Name: "defect_cost_analysis", Category: "finance", ExampleQuestion: "What did defects cost us per supplier last quarter?"},
			{ID: IntentDefectQualityTrend, Name: "defect_quality_trending", Category: "quality", ExampleQuestion: "Is defect severity improving?"},
			{ID: IntentSupplierScorecard, Name: "supplier_scorecard", Category: "procurement"},
			{ID: IntentDeliveryOpsReview, Name: "delivery_ops_review", Category: "operations"},
			{ID: IntentQualityCostCrossRef, Name: "quality_cost_crosscheck", Category: "quality"},
		},
		IntentConceptWeights: []seed.IntentConceptWeight{
			{IntentID: IntentDefectCostAnalysis, ConceptID: ConceptSeverityCost, Weight: 1},
			{IntentID: IntentDefectQualityTrend, ConceptID: ConceptOnTimeOperational, Weight: 1},
			{IntentID: IntentSupplierScorecard, ConceptID: ConceptOnTimeOperational, Weight: -1},
			{IntentID: IntentDeliveryOpsReview, ConceptID: ConceptOnTimeContractual, Weight: -1},
			{IntentID: IntentQualityCostCrossRef, ConceptID: ConceptSeverityCost, Weight: 1},
		},
		IntentPerspectiveWeights: []seed.IntentPerspectiveWeight{
			{IntentID: IntentDefectCostAnalysis, PerspectiveID: PerspectiveFinance, Weight: 1},
			{IntentID: IntentDefectQualityTrend, PerspectiveID: PerspectiveQuality, Weight: 1},
			{IntentID: IntentSupplierScorecard, PerspectiveID: PerspectiveFinance, Weight: 1},
			{IntentID: IntentQualityCostCrossRef, PerspectiveID: PerspectiveQuality, Weight: 1},
			{IntentID: IntentQualityCostCrossRef, PerspectiveID: PerspectiveCustomerSuccess, Weight: -1},
		},
		IntentQueryBindings: []seed.IntentQueryBinding{
			{IntentID: IntentDefectCostAnalysis, QueryCategory: "finance", QueryName: "defect_cost_by_supplier"},
		},
	}
}

// ConflictingElevationRecords extends the manufacturing dataset with an
// intent that elevates two meanings of product_defects.severity.
func ConflictingElevationRecords() *seed.Records {
	recs := ManufacturingRecords()
	recs.Intents = append(recs.Intents, seed.Intent{ID: 99, Name: "severity_everything"})
	recs.IntentConceptWeights = append(recs.IntentConceptWeights,
		seed.IntentConceptWeight{IntentID: 99, ConceptID: ConceptSeverityCost, Weight: 1},
		seed.IntentConceptWeight{IntentID: 99, ConceptID: ConceptSeverityCustomer, Weight: 1},
	)
	return recs
}

// WriteSeedFile marshals recs as YAML into dir/name and returns the path.
func WriteSeedFile(t *testing.T, dir, name string, recs *seed.Records) string {
	t.Helper()

	data, err := yaml.Marshal(recs)
	if err != nil {
		t.Fatalf("Failed to marshal seed records: %v", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}
	return path
}
