package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordUpload(t *testing.T) {
	before := testutil.ToFloat64(UploadBytesTotal.WithLabelValues("image"))

	RecordUpload("image", "success", 2048)
	RecordUpload("image", "error", 4096)

	if got := testutil.ToFloat64(UploadBytesTotal.WithLabelValues("image")) - before; got != 2048 {
		t.Errorf("expected only successful bytes counted, got %v", got)
	}
	if testutil.ToFloat64(UploadsTotal.WithLabelValues("image", "error")) < 1 {
		t.Error("expected failed upload counted")
	}
}

func TestRecordTokenExchange(t *testing.T) {
	before := testutil.ToFloat64(TokenExchangesTotal.WithLabelValues("rejected"))
	RecordTokenExchange("rejected")
	if got := testutil.ToFloat64(TokenExchangesTotal.WithLabelValues("rejected")) - before; got != 1 {
		t.Errorf("expected one rejection recorded, got %v", got)
	}
}
