package api

import "time"

type Vault struct {
	VaultID     string    `json:"vault_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	ImageCount  int64     `json:"image_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Grant is an access grant as seen by clients. A nil ExpiresAt never expires.
type Grant struct {
	VaultID   string     `json:"vault_id"`
	Address   string     `json:"address"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	GrantedAt time.Time  `json:"granted_at"`
}

type Image struct {
	ID         string    `json:"id"`
	VaultID    string    `json:"vault_id"`
	IPFSHash   string    `json:"ipfs_hash"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

type ChallengeRequest struct{}

type ChallengeResponse struct {
	Message string `json:"message"`
}

type AuthenticateRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

// AuthenticateResponse carries the caller's wrapped key when one has been
// stored; nil means the client still has to bootstrap it.
type AuthenticateResponse struct {
	AccessToken  string  `json:"access_token"`
	Address      string  `json:"address"`
	EncryptedKey *string `json:"encrypted_key,omitempty"`
}

type StoreKeyRequest struct {
	EncryptedKey string `json:"encrypted_key"`
}

type StoreKeyResponse struct{}

type FetchOwnKeyRequest struct{}

type FetchKeyRequest struct {
	Target  string `json:"target"`
	VaultID string `json:"vault_id"`
}

type FetchKeyResponse struct {
	EncryptedKey string `json:"encrypted_key"`
}

type CreateVaultRequest struct {
	VaultID     string `json:"vault_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type GetVaultRequest struct {
	VaultID string `json:"vault_id"`
}

type VaultResponse struct {
	Vault *Vault `json:"vault"`
}

type ListVaultsRequest struct{}

type ListVaultsResponse struct {
	Owned  []*Vault `json:"owned"`
	Shared []*Vault `json:"shared"`
}

type GrantAccessRequest struct {
	VaultID   string     `json:"vault_id"`
	Grantee   string     `json:"grantee"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type GrantAccessResponse struct {
	Grant *Grant `json:"grant"`
}

type RevokeAccessRequest struct {
	VaultID string `json:"vault_id"`
	Grantee string `json:"grantee"`
}

type RevokeAccessResponse struct{}

type ListGranteesRequest struct {
	VaultID string `json:"vault_id"`
}

type ListGranteesResponse struct {
	Grantees []*Grant `json:"grantees"`
}

type PutBlobRequest struct {
	VaultID string `json:"vault_id"`
	Data    []byte `json:"data"`
}

type PutBlobResponse struct {
	Hash string `json:"hash"`
}

type CreateImageRequest struct {
	VaultID  string `json:"vault_id"`
	IPFSHash string `json:"ipfs_hash"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

type ImageResponse struct {
	Image *Image `json:"image"`
}

type ListImagesRequest struct {
	VaultID string `json:"vault_id"`
}

type ListImagesResponse struct {
	Images []*Image `json:"images"`
}

type GetImageRequest struct {
	VaultID  string `json:"vault_id"`
	IPFSHash string `json:"ipfs_hash"`
}

type GetImageDataResponse struct {
	Data []byte `json:"data"`
}
