package orders

import (
	"context"

	"go.uber.org/multierr"

	pkgerrors "github.com/taskerway/dawat-storefront/pkg/errors"
	"github.com/taskerway/dawat-storefront/pkg/logger"
	"github.com/taskerway/dawat-storefront/pkg/metrics"
	"github.com/taskerway/dawat-storefront/pkg/pagination"
)

// RecordSink forwards a finalized order to a remote record-keeping system.
type RecordSink interface {
	Record(ctx context.Context, order *Order) error
}

// MailSink dispatches order notification emails.
type MailSink interface {
	SendConfirmation(ctx context.Context, order *Order) error
	SendOwnerAlert(ctx context.Context, order *Order) error
}

// ServiceParams groups the fan-out dependencies. Sheets and Mail may be nil
// when the corresponding sink is not configured.
type ServiceParams struct {
	Backup  Repository
	Sheets  RecordSink
	Mail    MailSink
	Metrics *metrics.CheckoutMetrics
	Logger  *logger.Logger
}

// Service owns order finalization: the one-shot persistence fan-out that runs
// after the customer has been charged.
type Service struct {
	backup  Repository
	sheets  RecordSink
	mail    MailSink
	metrics *metrics.CheckoutMetrics
	logg    *logger.Logger
}

// NewService builds the order persistence service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Backup == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "backup repository required")
	}
	return &Service{
		backup:  params.Backup,
		sheets:  params.Sheets,
		mail:    params.Mail,
		metrics: params.Metrics,
		logg:    params.Logger,
	}, nil
}

// Finalize marks the order Paid and fans it out to every sink. The customer
// has already been charged when this runs, so no sink failure may surface as
// an order failure: each write has its own isolated failure boundary and the
// aggregate is only logged.
func (s *Service) Finalize(ctx context.Context, order *Order) {
	order.PaymentStatus = StatusPaid

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.OrderID)
	}

	var sinkErrs error

	// Local backup first: it must exist before any remote write is attempted.
	if err := s.backup.Append(ctx, order); err != nil {
		sinkErrs = multierr.Append(sinkErrs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "local backup write"))
		s.metrics.IncSinkFailure("backup")
	}

	if s.sheets != nil {
		if err := s.sheets.Record(ctx, order); err != nil {
			sinkErrs = multierr.Append(sinkErrs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record sink write"))
			s.metrics.IncSinkFailure("sheets")
		}
	}

	if s.mail != nil {
		if err := s.mail.SendConfirmation(ctx, order); err != nil {
			sinkErrs = multierr.Append(sinkErrs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirmation email"))
			s.metrics.IncSinkFailure("email")
		}
		if err := s.mail.SendOwnerAlert(ctx, order); err != nil {
			sinkErrs = multierr.Append(sinkErrs, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "owner alert email"))
			s.metrics.IncSinkFailure("email")
		}
	}

	if sinkErrs != nil && s.logg != nil {
		s.logg.Error(ctx, "order.finalize.sink_failures", sinkErrs)
	}

	s.metrics.IncOrderFinalized()
	if s.logg != nil {
		s.logg.Info(ctx, "order.finalized")
	}
}

// ListBackups exposes the local archive for the reconciliation view.
func (s *Service) ListBackups(ctx context.Context, params pagination.Params) (*BackupPage, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.backup.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order backups")
	}
	return page, nil
}
