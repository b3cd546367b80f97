package model

import "time"

// AnomalyType production defect category.
type AnomalyType string

const (
	AnomalyDamagedBox          AnomalyType = "damaged_box"
	AnomalyEmptyCase           AnomalyType = "empty_case"
	AnomalyMissingFromOriginal AnomalyType = "missing_from_original"
	AnomalyOther               AnomalyType = "other"
)

// AnomalyTypes in display order.
var AnomalyTypes = []AnomalyType{AnomalyDamagedBox, AnomalyEmptyCase, AnomalyMissingFromOriginal, AnomalyOther}

// Valid reports whether t is a known type.
func (t AnomalyType) Valid() bool {
	for _, known := range AnomalyTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label is the French wording shown to workshop staff.
func (t AnomalyType) Label() string {
	switch t {
	case AnomalyDamagedBox:
		return "Boîte abîmée"
	case AnomalyEmptyCase:
		return "Étuis vides"
	case AnomalyMissingFromOriginal:
		return "Manque dans colis"
	default:
		return "Autre anomalie"
	}
}

// AnomalyStatus remediation progress.
type AnomalyStatus string

const (
	AnomalyPending    AnomalyStatus = "pending"
	AnomalyInProgress AnomalyStatus = "in-progress"
	AnomalyResolved   AnomalyStatus = "resolved"
)

// AnomalyStatuses in display order.
var AnomalyStatuses = []AnomalyStatus{AnomalyPending, AnomalyInProgress, AnomalyResolved}

// Valid reports whether s is a known status.
func (s AnomalyStatus) Valid() bool {
	for _, known := range AnomalyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Label is the French wording shown to workshop staff.
func (s AnomalyStatus) Label() string {
	switch s {
	case AnomalyInProgress:
		return "En cours"
	case AnomalyResolved:
		return "Résolue"
	default:
		return "En attente"
	}
}

// Anomaly maps to anomalies. The remediation checklist is stored flat.
type Anomaly struct {
	ID                string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BatchID           string        `gorm:"type:uuid;not null;index"                       json:"batch_id"`
	OperatorID        string        `gorm:"type:uuid;not null"                             json:"operator_id"`
	AssignmentID      *string       `gorm:"type:uuid"                                      json:"assignment_id,omitempty"`
	Type              AnomalyType   `gorm:"type:varchar(30);not null"                      json:"type"`
	Quantity          int           `gorm:"not null"                                       json:"quantity"`
	RemainingQuantity int           `gorm:"not null;default:0"                             json:"remaining_quantity"`
	Description       string        `gorm:"type:text;not null;default:''"                  json:"description"`
	DetectionDate     time.Time     `gorm:"not null;index"                                 json:"detection_date"`
	Status            AnomalyStatus `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	SAPDeclared       bool          `gorm:"column:sap_declared;not null;default:false"     json:"sap_declared"`
	DeviationCreated  bool          `gorm:"not null;default:false"                         json:"deviation_created"`
	DeviationNumber   *string       `gorm:"type:varchar(50)"                               json:"deviation_number,omitempty"`
	MovedToHold       bool          `gorm:"not null;default:false"                         json:"moved_to_hold"`
	PFManagerInformed bool          `gorm:"column:pf_manager_informed;not null;default:false" json:"pf_manager_informed"`
	QAInformed        bool          `gorm:"column:qa_informed;not null;default:false"      json:"qa_informed"`
	ResolutionNotes   string        `gorm:"type:text;not null;default:''"                  json:"resolution_notes"`
	ResolutionDate    *time.Time    `json:"resolution_date,omitempty"`
	BaseModel

	Operator *Operator `gorm:"foreignKey:OperatorID;references:ID" json:"operator,omitempty"`
	Batch    *Batch    `gorm:"foreignKey:BatchID;references:ID"    json:"batch,omitempty"`
}

func (Anomaly) TableName() string { return "anomalies" }
