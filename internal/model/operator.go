package model

// Operator maps to operators. Statistics are derived from the assignment history.
type Operator struct {
	ID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name string `gorm:"type:varchar(100);not null"                     json:"name"`
	BaseModel
}

func (Operator) TableName() string { return "operators" }
