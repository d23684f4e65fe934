package validation

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"demandprep/internal/config"
	"demandprep/internal/dataprocessing"
	apperrors "demandprep/internal/errors"
)

// RecordValidator checks decoded records against their struct tags and the
// key and reference rules of the dataset
type RecordValidator struct {
	validate *validator.Validate
	policy   config.ReferencePolicy
	logger   *slog.Logger
}

// NewRecordValidator creates a validator applying the given reference policy
func NewRecordValidator(policy config.ReferencePolicy, logger *slog.Logger) *RecordValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	// Report input column names in errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("csv"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RecordValidator{
		validate: v,
		policy:   policy,
		logger:   logger.With(slog.String("component", "record_validator")),
	}
}

// Report summarizes a successful validation
type Report struct {
	Transactions int                     `json:"transactions"`
	Products     int                     `json:"products"`
	Stores       int                     `json:"stores"`
	Orphans      dataprocessing.Orphans `json:"orphans"`
	Policy       config.ReferencePolicy `json:"policy"`
}

// Validate runs field, key and reference checks over ds in that order and
// returns the first failure
func (v *RecordValidator) Validate(ds *dataprocessing.Dataset) (*Report, error) {
	for i := range ds.Transactions {
		if err := v.Struct(dataprocessing.TableTransactions, i, ds.Transactions[i]); err != nil {
			return nil, err
		}
	}
	for i := range ds.Products {
		if err := v.Struct(dataprocessing.TableProducts, i, ds.Products[i]); err != nil {
			return nil, err
		}
	}
	for i := range ds.Stores {
		if err := v.Struct(dataprocessing.TableStores, i, ds.Stores[i]); err != nil {
			return nil, err
		}
	}

	if err := CheckDuplicates(ds); err != nil {
		return nil, err
	}

	orphans, err := v.CheckReferences(ds)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Transactions: len(ds.Transactions),
		Products:     len(ds.Products),
		Stores:       len(ds.Stores),
		Orphans:      orphans,
		Policy:       v.policy,
	}

	v.logger.Info("Dataset validated",
		slog.Int("transactions", report.Transactions),
		slog.Int("products", report.Products),
		slog.Int("stores", report.Stores),
		slog.String("reference_policy", string(v.policy)))

	return report, nil
}

// Struct validates one record. index is the zero-based data row; errors
// name the one-based file row with the header counted.
func (v *RecordValidator) Struct(table string, index int, record any) error {
	err := v.validate.Struct(record)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return apperrors.NewAppError(apperrors.ErrTypeValidation,
			fmt.Sprintf("invalid %s record at row %d", table, index+2), err)
	}

	first := verrs[0]
	return apperrors.NewAppError(apperrors.ErrTypeValidation,
		fmt.Sprintf("invalid %s record at row %d: %s", table, index+2, describe(first)), nil).
		WithContext("table", table).
		WithContext("row", index+2).
		WithContext("column", first.Field()).
		WithContext("rule", first.Tag())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt", "gte":
		op := ">"
		if fe.Tag() == "gte" {
			op = ">="
		}
		return fmt.Sprintf("%s must be %s %s, got %v", fe.Field(), op, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

