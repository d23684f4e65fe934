package operations

import (
	"time"
)

// Step identifiers
const (
	StepIDLoad              = "load"
	StepIDValidate          = "validate"
	StepIDProfile           = "profile"
	StepIDCleanTransactions = "clean_transactions"
	StepIDEncodeProducts    = "encode_products"
	StepIDEncodeStores      = "encode_stores"
	StepIDWrite             = "write"
)

// Step names
const (
	StepNameLoad              = "Loader"
	StepNameValidate          = "Record Validation"
	StepNameProfile           = "Dataset Profiling"
	StepNameCleanTransactions = "Transaction Cleaner"
	StepNameEncodeProducts    = "Product Encoder"
	StepNameEncodeStores      = "Store Encoder"
	StepNameWrite             = "Writer"
)

// Context keys under which steps publish their outputs
const (
	ContextKeyDataset           = "dataset"
	ContextKeyValidationReport  = "validation_report"
	ContextKeyProfileReport     = "profile_report"
	ContextKeyCleanReport       = "clean_report"
	ContextKeyTransactionsTable = "transactions_table"
	ContextKeyProductsTable     = "products_table"
	ContextKeyStoresTable       = "stores_table"
	ContextKeyOutputFiles       = "output_files"
)

// DefaultStageTimeout applies to steps without their own timeout
const DefaultStageTimeout = 5 * time.Minute

// RetryConfig defines retry behavior for steps
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  1,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Delay returns the wait before the attempt following attempt
func (c RetryConfig) Delay(attempt int) time.Duration {
	delay := c.InitialDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * c.Multiplier)
		if delay >= c.MaxDelay {
			break
		}
	}
	if c.MaxDelay > 0 && delay > c.MaxDelay {
		delay = c.MaxDelay
	}
	return delay
}

// OperationRequest asks the manager to run a set of steps
type OperationRequest struct {
	// ID identifies the run; empty generates one
	ID string `json:"id"`
	// Steps restricts the run to these step IDs; empty runs every registered step
	Steps []string `json:"steps,omitempty"`
}

// OperationResponse reports the outcome of a run
type OperationResponse struct {
	ID       string                 `json:"id"`
	Status   OperationStatusValue   `json:"status"`
	Duration time.Duration          `json:"duration"`
	Steps    map[string]StepSummary `json:"steps"`
	Error    string                 `json:"error,omitempty"`
}
