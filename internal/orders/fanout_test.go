package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/taskerway/dawat-storefront/pkg/pagination"
)

type stubBackup struct {
	err   error
	calls []string
	seen  []*Order
}

func (s *stubBackup) Append(ctx context.Context, order *Order) error {
	s.calls = append(s.calls, "backup")
	s.seen = append(s.seen, order)
	return s.err
}

func (s *stubBackup) List(ctx context.Context, params pagination.Params) (*BackupPage, error) {
	return &BackupPage{}, nil
}

type stubRecordSink struct {
	err   error
	calls *[]string
}

func (s *stubRecordSink) Record(ctx context.Context, order *Order) error {
	*s.calls = append(*s.calls, "sheets")
	return s.err
}

type stubMailSink struct {
	confirmErr error
	alertErr   error
	calls      *[]string
}

func (s *stubMailSink) SendConfirmation(ctx context.Context, order *Order) error {
	*s.calls = append(*s.calls, "confirmation")
	return s.confirmErr
}

func (s *stubMailSink) SendOwnerAlert(ctx context.Context, order *Order) error {
	*s.calls = append(*s.calls, "alert")
	return s.alertErr
}

func TestFinalizeRunsEverySink(t *testing.T) {
	t.Parallel()

	backup := &stubBackup{}
	sheets := &stubRecordSink{calls: &backup.calls}
	mail := &stubMailSink{calls: &backup.calls}

	svc, err := NewService(ServiceParams{Backup: backup, Sheets: sheets, Mail: mail})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	order := BuildOrder(testView(), validDetails())
	svc.Finalize(context.Background(), order)

	want := []string{"backup", "sheets", "confirmation", "alert"}
	if len(backup.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", backup.calls, want)
	}
	for i, name := range want {
		if backup.calls[i] != name {
			t.Fatalf("calls = %v, want %v", backup.calls, want)
		}
	}
	if order.PaymentStatus != StatusPaid {
		t.Fatalf("payment status = %q, want %q", order.PaymentStatus, StatusPaid)
	}
}

func TestFinalizeSinkFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	backup := &stubBackup{err: errors.New("disk full")}
	sheets := &stubRecordSink{err: errors.New("webhook down"), calls: &backup.calls}
	mail := &stubMailSink{confirmErr: errors.New("smtp down"), calls: &backup.calls}

	svc, err := NewService(ServiceParams{Backup: backup, Sheets: sheets, Mail: mail})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	order := BuildOrder(testView(), validDetails())
	svc.Finalize(context.Background(), order)

	// Every sink still ran despite the ones before it failing.
	if len(backup.calls) != 4 {
		t.Fatalf("calls = %v, want all four sinks", backup.calls)
	}
	if order.PaymentStatus != StatusPaid {
		t.Fatal("the order stays paid regardless of sink failures")
	}
}

func TestFinalizeWithoutOptionalSinks(t *testing.T) {
	t.Parallel()

	backup := &stubBackup{}
	svc, err := NewService(ServiceParams{Backup: backup})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	svc.Finalize(context.Background(), BuildOrder(testView(), validDetails()))

	if len(backup.calls) != 1 || backup.calls[0] != "backup" {
		t.Fatalf("calls = %v, want just the backup", backup.calls)
	}
}

func TestNewServiceRequiresBackup(t *testing.T) {
	t.Parallel()

	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected missing backup to be rejected")
	}
}
