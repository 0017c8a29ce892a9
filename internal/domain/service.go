package domain

type ServiceCategory string

const (
	CategoryPlumber     ServiceCategory = "plumber"
	CategoryElectrician ServiceCategory = "electrician"
	CategoryCleaner     ServiceCategory = "cleaner"
	CategoryCarpenter   ServiceCategory = "carpenter"
	CategoryPainter     ServiceCategory = "painter"
	CategoryOther       ServiceCategory = "other"
)

// Service is a catalog entry describing the kind of work a fundi offers.
type Service struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Category    ServiceCategory `gorm:"type:varchar(50);index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
}

func (Service) TableName() string { return "services" }
