package panther

import (
	"context"
)

// CloudAccount represents an AWS account onboarded for cloud security
// scanning.
type CloudAccount struct {
	ID                     string   `json:"id"`
	AWSAccountID           string   `json:"awsAccountId"`
	Label                  string   `json:"label"`
	AWSRegionIgnoreList    []string `json:"awsRegionIgnoreList,omitempty"`
	ResourceTypeIgnoreList []string `json:"resourceTypeIgnoreList,omitempty"`
	IsEditable             bool     `json:"isEditable,omitempty"`
}

// CloudAccountService provides operations on cloud scanning accounts.
type CloudAccountService interface {
	// List returns every configured cloud account, following pagination to
	// the end.
	List(ctx context.Context, opts ...RequestOption) ([]*CloudAccount, error)

	// Get retrieves a single cloud account by ID.
	Get(ctx context.Context, accountID string, opts ...RequestOption) (*CloudAccount, error)
}

// cloudAccountService implements CloudAccountService.
type cloudAccountService struct {
	gql *gqlExecutor
}

func newCloudAccountService(gql *gqlExecutor) *cloudAccountService {
	return &cloudAccountService{gql: gql}
}

// cloudAccountsPage is the wire shape of a single cloud_accounts/list page.
type cloudAccountsPage struct {
	CloudAccounts struct {
		Edges []struct {
			Node *CloudAccount `json:"node"`
		} `json:"edges"`
		PageInfo struct {
			HasNextPage bool   `json:"hasNextPage"`
			EndCursor   string `json:"endCursor"`
		} `json:"pageInfo"`
	} `json:"cloudAccounts"`
}

// List returns every configured cloud account.
func (s *cloudAccountService) List(ctx context.Context, opts ...RequestOption) ([]*CloudAccount, error) {
	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	accounts := make([]*CloudAccount, 0)
	var cursor any

	for {
		var page cloudAccountsPage
		err := s.gql.execute(ctx, "cloud_accounts/list", map[string]any{"cursor": cursor}, reqCfg.headers, &page)
		if err != nil {
			return nil, err
		}

		for _, edge := range page.CloudAccounts.Edges {
			accounts = append(accounts, edge.Node)
		}

		if !page.CloudAccounts.PageInfo.HasNextPage {
			return accounts, nil
		}
		cursor = page.CloudAccounts.PageInfo.EndCursor
	}
}

// Get retrieves a single cloud account by ID.
func (s *cloudAccountService) Get(ctx context.Context, accountID string, opts ...RequestOption) (*CloudAccount, error) {
	// Cloud account lookups require the hyphenated ID form.
	accountID, err := HyphenatedID(accountID)
	if err != nil {
		return nil, err
	}

	reqCfg := newRequestConfig()
	reqCfg.apply(opts...)

	var result struct {
		CloudAccount *CloudAccount `json:"cloudAccount"`
	}
	err = s.gql.execute(ctx, "cloud_accounts/get", map[string]any{"id": accountID}, reqCfg.headers, &result)
	if err != nil {
		return nil, err
	}

	return result.CloudAccount, nil
}
