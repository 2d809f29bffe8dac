// Package bcra is a Go client for the statistics API published by the
// BCRA (Banco Central de la República Argentina). It covers the
// Monetarias v3.0 series, the reported-checks (Cheques) endpoints, and
// the exchange-rate (Estadísticas Cambiarias) endpoints.
//
// Every call goes through the execution core in pkg/resilience: outbound
// requests share one client-side token bucket, run under connect/read
// deadlines, and transient failures are retried with exponential backoff.
// Failures surface as *resilience.RequestError values so callers can
// branch on the failure kind instead of matching message strings.
//
//	client, err := bcra.New(bcra.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	vars, err := client.Variables(ctx)
package bcra
