package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// PinataUploader pins content through the Pinata pinning API, authorized by a
// JWT bearer token. Uploads go through the pinFileToIPFS endpoint so the
// pinned bytes are exactly the canonical bytes the content hash was computed
// over (pinJSONToIPFS re-serializes server-side and would break hash
// reproducibility).
type PinataUploader struct {
	baseURL string
	jwt     string
	client  *http.Client
}

// pinataResponse mirrors the Pinata pinning API response payload.
type pinataResponse struct {
	IpfsHash  string `json:"IpfsHash"`
	PinSize   int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

// NewPinataUploader constructs an uploader for the Pinata API at baseURL
// (e.g. "https://api.pinata.cloud"). The JWT is required.
func NewPinataUploader(baseURL, jwt string) (*PinataUploader, error) {
	if jwt == "" {
		return nil, fmt.Errorf("pinata JWT is required")
	}
	return &PinataUploader{
		baseURL: baseURL,
		jwt:     jwt,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Upload pins data as a file and returns the CID reported by Pinata.
func (u *PinataUploader) Upload(ctx context.Context, data []byte) (string, error) {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "metadata.json")
	if err != nil {
		return "", err
	}
	if _, err = fw.Write(data); err != nil {
		return "", err
	}
	if err = mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/pinning/pinFileToIPFS", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+u.jwt)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		zap.L().Error("error uploading to pinata", zap.Error(err))
		return "", err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			zap.L().Error("error closing pinata response", zap.Error(cerr))
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		zap.L().Error("pinata returned non-success status",
			zap.String("status", resp.Status),
			zap.ByteString("body", raw))
		return "", fmt.Errorf("pinata returned status %s", resp.Status)
	}

	var pr pinataResponse
	if err := json.Unmarshal(raw, &pr); err != nil {
		zap.L().Error("error unmarshaling pinata response", zap.Error(err))
		return "", err
	}
	if pr.IpfsHash == "" {
		return "", fmt.Errorf("pinata returned no CID")
	}

	zap.L().Debug("pinned to pinata", zap.String("cid", pr.IpfsHash), zap.Int64("size", pr.PinSize))
	return pr.IpfsHash, nil
}
