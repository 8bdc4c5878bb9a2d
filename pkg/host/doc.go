// Package host implements the seam between the SDUI engine and the surrounding
// screen. A Screen owns one page: it requests layouts through the host
// supplied RequestLayout capability, keeps at most one accepted response per
// request generation, and publishes Loading, Ready, or Degraded states.
package host
