package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/appvote/portal/internal/errors"
)

// Identity is what the external identity provider asserts about the
// holder of an access token.
type Identity struct {
	ID                 string
	Username           string
	RegistrationNumber string
}

// IdentityClient verifies a provider access token and returns the
// identity behind it.  Authentication mechanics live entirely on the
// provider's side; we only exchange its token for our own JWT.
type IdentityClient interface {
	IdentityFromToken(token string) (Identity, error)
}

type identityClient struct {
	baseURL string
}

func NewIdentityClient(baseURL string) IdentityClient {
	ic := identityClient{
		baseURL: baseURL,
	}

	return ic
}

func (ic identityClient) IdentityFromToken(token string) (Identity, error) {
	var op errors.Op = "identity.IdentityFromToken"
	url := ic.baseURL + "/userinfo"

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return Identity{}, errors.E(op, err, "error creating http request")
	}

	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("User-Agent", "appvote_portal/0.1.0")

	client := &http.Client{}
	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		return Identity{}, errors.E(op, err, "error on http request to identity provider", errors.KindServiceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Identity{}, errors.E(op, fmt.Errorf("identity provider returned status %d %s", resp.StatusCode, resp.Status), errors.KindAuthError)
	}

	if resp.StatusCode != http.StatusOK {
		return Identity{}, errors.E(op, fmt.Errorf("identity provider returned status %d %s", resp.StatusCode, resp.Status), errors.KindServiceUnavailable)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return Identity{}, errors.E(op, err, "error reading response from identity provider")
	}

	data := make(map[string]interface{})
	err = json.Unmarshal(content, &data)
	if err != nil {
		return Identity{}, errors.E(op, err, "error unmarshaling response from identity provider")
	}

	sub, ok := data["sub"].(string)
	if !ok {
		return Identity{}, errors.E(op, fmt.Errorf("response from identity provider doesn't include expected field 'sub'"))
	}

	username, _ := data["username"].(string)
	regNumber, _ := data["registration_number"].(string)

	return Identity{
		ID:                 sub,
		Username:           username,
		RegistrationNumber: regNumber,
	}, nil
}
