package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/utils"
)

var (
	ErrInvalidPostalCode  = errors.New("postal code must have 8 digits")
	ErrPostalCodeNotFound = errors.New("postal code not found")
)

// viaCEPResponse is the body of a ViaCEP lookup. Unknown codes answer 200
// with erro set.
type viaCEPResponse struct {
	CEP        string      `json:"cep"`
	Logradouro string      `json:"logradouro"`
	Bairro     string      `json:"bairro"`
	Localidade string      `json:"localidade"`
	UF         string      `json:"uf"`
	Erro       interface{} `json:"erro"`
}

func (r viaCEPResponse) notFound() bool {
	switch v := r.Erro.(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// PostalCodeService resolves Brazilian postal codes through a ViaCEP
// compatible provider
type PostalCodeService struct {
	baseURL    string
	httpClient *http.Client
}

// NewPostalCodeService creates a lookup against baseURL, e.g.
// https://viacep.com.br/ws
func NewPostalCodeService(baseURL string) *PostalCodeService {
	return &PostalCodeService{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// LookupPostalCode returns the address registered for postalCode
func (s *PostalCodeService) LookupPostalCode(ctx context.Context, postalCode string) (*dto.Address, error) {
	code := utils.OnlyDigits(postalCode)
	if len(code) != 8 {
		return nil, ErrInvalidPostalCode
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", s.baseURL, code), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call postal code provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrPostalCodeNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrInvalidPostalCode
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("postal code provider returned status %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode postal code response: %w", err)
	}
	if body.notFound() {
		return nil, ErrPostalCodeNotFound
	}

	return &dto.Address{
		PostalCode:   code,
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
	}, nil
}

var postalCodeServiceInstance *PostalCodeService

// InitPostalCodeService initializes the shared lookup
func InitPostalCodeService(baseURL string) *PostalCodeService {
	postalCodeServiceInstance = NewPostalCodeService(baseURL)
	return postalCodeServiceInstance
}

// GetPostalCodeService returns the shared lookup
func GetPostalCodeService() *PostalCodeService {
	return postalCodeServiceInstance
}

// SetPostalCodeService replaces the shared lookup, nil disables it
func SetPostalCodeService(s *PostalCodeService) {
	postalCodeServiceInstance = s
}
