package domain

// Custom errors
var (
	ErrDatasetNotFound   = NewDomainError("dataset not found")
	ErrInvalidClass      = NewDomainError("unknown ticket class")
	ErrEmptyDataset      = NewDomainError("dataset has no records")
	ErrMappingIncomplete = NewDomainError("mapping artifact is missing one or more lookup tables")
	ErrEmptySLATable     = NewDomainError("sla table has no entries")
	ErrUnknownGroupKey   = NewDomainError("unknown grouping key")
	ErrUnknownFormula    = NewDomainError("unknown compliance formula")
	ErrUnknownRankMetric = NewDomainError("unknown ranking metric")
	ErrInvalidMonth      = NewDomainError("month must be formatted as YYYY-MM")
)

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}
