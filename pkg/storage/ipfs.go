package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ipfs/go-cid"
	"github.com/ipfs/kubo/client/rpc"
	"go.uber.org/zap"
)

// KuboUploader pins content through the HTTP API of an IPFS (Kubo) node
// using the `add` command with pinning enabled.
type KuboUploader struct {
	api *rpc.HttpApi
}

// NewKuboUploader constructs an uploader pointed at the Kubo HTTP API at url.
func NewKuboUploader(url string) (*KuboUploader, error) {
	api, err := NewIPFSClient(url)
	if err != nil {
		return nil, err
	}
	return &KuboUploader{api: api}, nil
}

// Upload adds data to the node with pin=true and returns the resulting CID.
func (u *KuboUploader) Upload(ctx context.Context, data []byte) (string, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
	}

	if u.api == nil {
		return "", fmt.Errorf("ipfs client not configured")
	}

	req := u.api.Request("add")
	req.Option("pin", true)
	req.Body(bytes.NewReader(data))

	resp, err := req.Send(ctx)
	if err != nil {
		zap.L().Error("error uploading to ipfs", zap.Error(err))
		return "", err
	}
	defer func(resp *rpc.Response) {
		err = resp.Close()
		if err != nil {
			zap.L().Error("error closing ipfs response", zap.Error(err))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs add command returned error", zap.Error(resp.Error))
		return "", resp.Error
	}

	body, err := io.ReadAll(resp.Output)
	if err != nil {
		zap.L().Error("error reading ipfs add response", zap.Error(err))
		return "", err
	}

	var addResp struct {
		Hash string `json:"Hash"`
	}
	if err := json.Unmarshal(body, &addResp); err != nil {
		zap.L().Error("error unmarshaling ipfs add response", zap.Error(err))
		return "", err
	}
	if addResp.Hash == "" {
		return "", fmt.Errorf("ipfs add returned no hash")
	}

	zap.L().Debug("pinned to ipfs node", zap.String("cid", addResp.Hash))
	return addResp.Hash, nil
}

// Fetch retrieves content by CID via `ipfs cat` and performs a best-effort
// verification by recomputing a CID from (original CID bytes + content) and
// comparing it with the requested one.
func (u *KuboUploader) Fetch(ctx context.Context, id string) (content []byte, err error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
	}

	id = formatCID(id)

	if u.api == nil {
		return nil, fmt.Errorf("ipfs client not configured")
	}

	cID, err := cid.Parse(id)
	if err != nil {
		zap.L().Error("error parsing the ipfs cid", zap.String("cid", id), zap.Error(err))
		return nil, err
	}

	req := u.api.Request("cat", cID.String())
	resp, err := req.Send(ctx)
	if err != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("cid", id), zap.Error(err))
		return
	}
	defer func(resp *rpc.Response) {
		err = resp.Close()
		if err != nil {
			zap.L().Error("error closing response in ipfs", zap.String("cid", id), zap.Error(err))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("error executing the cat command in ipfs", zap.String("cid", id), zap.Error(resp.Error))
		return nil, resp.Error
	}
	content, err = io.ReadAll(resp.Output)
	if err != nil {
		zap.L().Error("error reading pinned content", zap.String("cid", id), zap.Error(err))
		return
	}

	// Create a CID manually to check CID equivalence.
	_, c, err := cid.CidFromBytes(append(cID.Bytes(), content...))
	if err != nil {
		zap.L().Error("error generating ipfs cid", zap.String("cid", id), zap.Error(err))
		return
	}

	if !c.Equals(cID) {
		zap.L().Error("IPFS hash verification failed. Generated cid does not match with expected cid",
			zap.String("expected", id),
			zap.String("fromContent", c.String()))
	}

	return content, err
}

// ReadBack fetches previously pinned content through the configured public
// HTTP gateway. Useful to confirm a record is retrievable after pinning.
func (c *Client) ReadBack(ctx context.Context, id string) ([]byte, error) {
	if c.gatewayURL == "" {
		return nil, fmt.Errorf("no gateway configured")
	}

	url := c.gatewayURL + formatCID(id)
	zap.L().Debug("reading pinned content from gateway", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			zap.L().Error("error closing gateway response", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url.
// The client uses a short HTTP timeout suitable for metadata uploads.
func NewIPFSClient(url string) (client *rpc.HttpApi, err error) {
	httpClient := http.Client{
		Timeout: 5 * time.Second,
	}
	client, err = rpc.NewURLApiWithClient(url, &httpClient)
	if err != nil {
		zap.L().Error("Connection failed to IPFS", zap.String("url", url), zap.Error(err))
	}
	return client, err
}
