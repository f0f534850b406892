package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jhoicas/Contratos-api/internal/application/invoicing"
	"github.com/jhoicas/Contratos-api/internal/application/ledger"
	"github.com/jhoicas/Contratos-api/internal/domain"
)

var (
	_ ledger.Directory             = (*Client)(nil)
	_ invoicing.ProviderDirectory = (*Client)(nil)
)

// Client consulta el directorio corporativo (ERP) por HTTP.
// Todas las respuestas siguen el sobre {success, data, message}.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient construye el cliente. timeout <= 0 usa 5 s.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras de respuesta ──────────────────────────────────────────────────

type envelope[T any] struct {
	Success bool   `json:"success"`
	Data    *T     `json:"data"`
	Message string `json:"message"`
}

type officeData struct {
	OfficeCode     string `json:"codigo_oficina"`
	OfficeName     string `json:"nombre_oficina"`
	CostCenterCode string `json:"codigo_ccosto"`
	CostCenterName string `json:"nombre_ccosto"`
}

type sequenceData struct {
	Class   string `json:"clase"`
	Type    string `json:"tipo"`
	Name    string `json:"nombre_documento"`
	Current *int   `json:"consecutivo_actual"`
}

type providerData struct {
	TaxID string `json:"nit"`
	Name  string `json:"nombre"`
}

// ── Consultas ─────────────────────────────────────────────────────────────────

// CostCenter devuelve el centro de costo asociado al subcódigo de oficina.
func (c *Client) CostCenter(ctx context.Context, subCode string) (string, error) {
	if strings.TrimSpace(subCode) == "" {
		return "", fmt.Errorf("centro de costo: %w", domain.ErrInvalidInput)
	}
	var out envelope[officeData]
	if err := c.get(ctx, "/oficinas-oracle/"+url.PathEscape(subCode), nil, &out); err != nil {
		return "", fmt.Errorf("centro de costo %s: %w", subCode, err)
	}
	if !out.Success || out.Data == nil {
		return "", fmt.Errorf("centro de costo %s: %w", subCode, domain.ErrNotFound)
	}
	return strings.TrimSpace(out.Data.CostCenterCode), nil
}

// NextDocumentNumber devuelve consecutivo_actual + 1 para el tipo y la clase de documento.
func (c *Client) NextDocumentNumber(ctx context.Context, docType, docClass string) (int, error) {
	q := url.Values{}
	if docClass != "" {
		q.Set("clase_documento", docClass)
	}
	var out envelope[sequenceData]
	if err := c.get(ctx, "/consecutivo-documento/"+url.PathEscape(docType), q, &out); err != nil {
		return 0, fmt.Errorf("consecutivo %s: %w", docType, err)
	}
	if !out.Success || out.Data == nil || out.Data.Current == nil {
		return 0, fmt.Errorf("consecutivo %s: %w", docType, domain.ErrNotFound)
	}
	return *out.Data.Current + 1, nil
}

// ProviderName busca el nombre registrado en el ERP para un NIT.
func (c *Client) ProviderName(ctx context.Context, taxID string) (string, error) {
	var out envelope[providerData]
	if err := c.get(ctx, "/proveedores-oracle/"+url.PathEscape(taxID), nil, &out); err != nil {
		return "", fmt.Errorf("proveedor %s: %w", taxID, err)
	}
	if !out.Success || out.Data == nil || strings.TrimSpace(out.Data.Name) == "" {
		return "", fmt.Errorf("proveedor %s: %w", taxID, domain.ErrNotFound)
	}
	return strings.TrimSpace(out.Data.Name), nil
}

// get ejecuta el GET y decodifica el sobre. Fallos de red, 5xx y cuerpos
// ilegibles se reportan como ErrDirectoryUnavailable; 404 como ErrNotFound.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if c.baseURL == "" {
		return domain.ErrDirectoryUnavailable
	}
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("construir request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: leer respuesta: %v", domain.ErrDirectoryUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: HTTP %d", domain.ErrDirectoryUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return fmt.Errorf("%w: JSON inválido en %d", domain.ErrDirectoryUnavailable, syntaxErr.Offset)
		}
		return fmt.Errorf("%w: %v", domain.ErrDirectoryUnavailable, err)
	}
	return nil
}
