package httpclient

import (
	"context"
	"crypto/x509"
	"errors"
	"net"
	"net/url"
	"os"

	"promptforge/internal/ports"

	"github.com/go-resty/resty/v2"
)

const maxBodyInError = 2000

// classify converts a transport-level error into the call-error taxonomy.
// Nothing rawer than a *ports.CallError leaves this package.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isTimeout(err) {
		return &ports.CallError{Category: ports.CallTimeout, Err: err}
	}
	if isTLS(err) {
		return &ports.CallError{Category: ports.CallTLSFailed, Err: err}
	}
	return &ports.CallError{Category: ports.CallConnectionFailed, Err: err}
}

func httpError(r *resty.Response) error {
	body := r.String()
	if len(body) > maxBodyInError {
		body = body[:maxBodyInError-3] + "..."
	}
	return &ports.CallError{Category: ports.CallHTTPError, Status: r.StatusCode(), Body: body}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func isTLS(err error) bool {
	var (
		certErr x509.CertificateInvalidError
		authErr x509.UnknownAuthorityError
		hostErr x509.HostnameError
	)
	if errors.As(err, &certErr) || errors.As(err, &authErr) || errors.As(err, &hostErr) {
		return true
	}
	// resty wraps transport errors in *url.Error; look one level down too.
	var ue *url.Error
	if errors.As(err, &ue) && ue.Err != nil {
		return errors.As(ue.Err, &certErr) || errors.As(ue.Err, &authErr) || errors.As(ue.Err, &hostErr)
	}
	return false
}
