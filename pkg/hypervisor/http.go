package hypervisor

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/log"
	"github.com/cuemby/vmctrl/pkg/metrics"
)

// Config configures the HTTP adapter (spec §6.4 cluster url/auth_header).
type Config struct {
	// BaseURL is the cluster API root, e.g. "https://pve.example.com:8006".
	BaseURL string
	// AuthHeader is the full "Authorization"-style header value sent on
	// every request (spec §6.2: "the client MUST set the configured
	// Authorization header on every request"). Treated as sensitive; it
	// is never logged (see pkg/log.SensitiveHeaders).
	AuthHeader string
}

// HTTPClient is the concrete C1 adapter. It lazily builds a single
// connection-pooled *http.Client on first use and reuses it for the
// lifetime of the process (spec §4.1, §5).
type HTTPClient struct {
	cfg Config

	once       sync.Once
	httpClient *http.Client
}

// NewHTTPClient constructs an adapter around cfg. The underlying
// http.Client is not built until the first request.
func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{cfg: cfg}
}

func (c *HTTPClient) client() *http.Client {
	c.once.Do(func() {
		// Self-signed cluster certificates are the norm for private
		// hypervisor clusters; verifying them against a public CA
		// bundle would reject every legitimate cluster (spec §4.1:
		// "deliberate policy of this component").
		c.httpClient = &http.Client{
			Timeout: 0, // no app-level timeout beyond the task waiter (spec §5)
			Transport: &http.Transport{
				TLSClientConfig:     &tls.Config{InsecureSkipVerify: true}, //nolint:gosec
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 32,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	})
	return c.httpClient
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

// do issues an HTTP request, attaches the auth header, and unwraps the
// cluster's {"data": ...} envelope on success (spec §4.1, §6.2).
func (c *HTTPClient) do(ctx context.Context, op apperr.ClusterOp, method, path string, form url.Values) (json.RawMessage, error) {
	var body io.Reader
	contentType := ""
	if form != nil {
		body = strings.NewReader(form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		metrics.ClusterCallsTotal.WithLabelValues(string(op), "err").Inc()
		return nil, apperr.WrapTransport(err)
	}
	req.Header.Set("Authorization", c.cfg.AuthHeader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client().Do(req)
	if err != nil {
		metrics.ClusterCallsTotal.WithLabelValues(string(op), "err").Inc()
		return nil, apperr.WrapTransport(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ClusterCallsTotal.WithLabelValues(string(op), "err").Inc()
		return nil, apperr.WrapTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.ClusterCallsTotal.WithLabelValues(string(op), "err").Inc()
		log.WithComponent("hypervisor").Warn().
			Str("operation", string(op)).
			Int("status", resp.StatusCode).
			Msg("cluster call failed")
		return nil, apperr.NewCluster(op, resp.StatusCode, string(respBody))
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		metrics.ClusterCallsTotal.WithLabelValues(string(op), "err").Inc()
		return nil, apperr.WrapTransport(fmt.Errorf("hypervisor: decoding envelope: %w", err))
	}

	metrics.ClusterCallsTotal.WithLabelValues(string(op), "ok").Inc()
	return env.Data, nil
}

func vmPath(vm VM, suffix string) string {
	return fmt.Sprintf("/api2/json/nodes/%s/qemu/%d%s", vm.Node, vm.ID, suffix)
}

func (c *HTTPClient) lifecycleCall(ctx context.Context, op apperr.ClusterOp, vm VM, action string) (UPID, error) {
	data, err := c.do(ctx, op, http.MethodPost, vmPath(vm, "/status/"+action), url.Values{})
	if err != nil {
		return "", err
	}
	var upid string
	if err := json.Unmarshal(data, &upid); err != nil {
		return "", apperr.WrapTransport(fmt.Errorf("hypervisor: decoding upid: %w", err))
	}
	return UPID(upid), nil
}

func (c *HTTPClient) Start(ctx context.Context, vm VM) (UPID, error) {
	return c.lifecycleCall(ctx, apperr.ClusterOpStart, vm, "start")
}

func (c *HTTPClient) Shutdown(ctx context.Context, vm VM) (UPID, error) {
	return c.lifecycleCall(ctx, apperr.ClusterOpShutdown, vm, "shutdown")
}

func (c *HTTPClient) Stop(ctx context.Context, vm VM) (UPID, error) {
	return c.lifecycleCall(ctx, apperr.ClusterOpStop, vm, "stop")
}

func (c *HTTPClient) Reboot(ctx context.Context, vm VM) (UPID, error) {
	return c.lifecycleCall(ctx, apperr.ClusterOpReboot, vm, "reboot")
}

func (c *HTTPClient) Delete(ctx context.Context, vm VM) (UPID, error) {
	data, err := c.do(ctx, apperr.ClusterOpDelete, http.MethodDelete, vmPath(vm, ""), nil)
	if err != nil {
		return "", err
	}
	var upid string
	if err := json.Unmarshal(data, &upid); err != nil {
		return "", apperr.WrapTransport(fmt.Errorf("hypervisor: decoding upid: %w", err))
	}
	return UPID(upid), nil
}

// Create is the compound operation of spec §4.1: fetch the next free
// vm id, then clone the template onto it. A failure at either step
// yields a Create-tagged error.
func (c *HTTPClient) Create(ctx context.Context, tmpl Template) (int64, UPID, error) {
	data, err := c.do(ctx, apperr.ClusterOpCreate, http.MethodGet, "/api2/json/cluster/nextid", nil)
	if err != nil {
		return 0, "", err
	}
	var idStr string
	if err := json.Unmarshal(data, &idStr); err != nil {
		return 0, "", apperr.NewCluster(apperr.ClusterOpCreate, 0, "malformed nextid response")
	}
	newID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return 0, "", apperr.NewCluster(apperr.ClusterOpCreate, 0, "non-numeric nextid: "+idStr)
	}

	form := url.Values{"newid": {strconv.FormatInt(newID, 10)}}
	cloneData, err := c.do(ctx, apperr.ClusterOpCreate, http.MethodPost,
		fmt.Sprintf("/api2/json/nodes/%s/qemu/%d/clone", tmpl.Node, tmpl.ID), form)
	if err != nil {
		return 0, "", err
	}
	var upid string
	if err := json.Unmarshal(cloneData, &upid); err != nil {
		return 0, "", apperr.NewCluster(apperr.ClusterOpCreate, 0, "malformed clone response")
	}
	return newID, UPID(upid), nil
}

func (c *HTTPClient) VMConfigure(ctx context.Context, vm VM, cfg VMConfig) (UPID, error) {
	form := url.Values{
		"ipconfig0": {cfg.CIDR},
		"cores":     {strconv.FormatInt(cfg.CPUCores, 10)},
		"memory":    {strconv.FormatInt(cfg.RAMGB*1024, 10)},
	}
	data, err := c.do(ctx, apperr.ClusterOpConfig, http.MethodPost, vmPath(vm, "/config"), form)
	if err != nil {
		return "", err
	}
	var upid string
	if err := json.Unmarshal(data, &upid); err != nil {
		return "", apperr.WrapTransport(fmt.Errorf("hypervisor: decoding upid: %w", err))
	}
	return UPID(upid), nil
}

func (c *HTTPClient) VMStatus(ctx context.Context, vm VM) (VMStatus, error) {
	data, err := c.do(ctx, apperr.ClusterOpStatus, http.MethodGet, vmPath(vm, "/status/current"), nil)
	if err != nil {
		return "", err
	}
	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &status); err != nil {
		return "", apperr.WrapTransport(fmt.Errorf("hypervisor: decoding vm status: %w", err))
	}
	switch status.Status {
	case "running":
		return VMStatusRunning, nil
	default:
		return VMStatusStopped, nil
	}
}

// TaskStatus collapses the cluster's two-field {status, exitstatus}
// response into the tri-state result described in spec §4.1:
//
//	Running               ⇒ Pending
//	Stopped, "OK"          ⇒ Completed
//	Stopped, other         ⇒ Failed(other)
//	Stopped, absent        ⇒ Failed("Unexpected")
func (c *HTTPClient) TaskStatus(ctx context.Context, node string, task UPID) (TaskResult, error) {
	path := fmt.Sprintf("/api2/json/nodes/%s/tasks/%s/status", node, PercentEncode(task))
	data, err := c.do(ctx, apperr.ClusterOpStatus, http.MethodGet, path, nil)
	if err != nil {
		return TaskResult{}, err
	}
	var status struct {
		Status     string `json:"status"`
		ExitStatus string `json:"exitstatus"`
	}
	if err := json.Unmarshal(data, &status); err != nil {
		return TaskResult{}, apperr.WrapTransport(fmt.Errorf("hypervisor: decoding task status: %w", err))
	}

	if status.Status == "running" {
		return TaskResult{State: TaskPending}, nil
	}
	switch {
	case status.ExitStatus == "OK":
		return TaskResult{State: TaskCompleted}, nil
	case status.ExitStatus != "":
		return TaskResult{State: TaskFailed, Reason: status.ExitStatus}, nil
	default:
		return TaskResult{State: TaskFailed, Reason: "Unexpected"}, nil
	}
}

var _ Client = (*HTTPClient)(nil)
