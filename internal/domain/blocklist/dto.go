package blocklist

import "time"

// SetBlockRequest carries the query parameters of set_hwic_block
type SetBlockRequest struct {
	HWIC   string `json:"hwic" validate:"required,max=128"`
	Block  bool   `json:"block"`
	Reason string `json:"reason" validate:"max=500"`
}

// BlockResult is returned by Block
type BlockResult struct {
	Message string `json:"message"`
	Created bool   `json:"created"`
}

// UnblockResult is returned by Unblock
type UnblockResult struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

// BlockedHWICResponse is the admin listing projection
type BlockedHWICResponse struct {
	ID        int64     `json:"id"`
	HWIC      string    `json:"hwic"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blocked_at"`
}

func BlockedHWICResponseFromEntity(b *BlockedHWIC) *BlockedHWICResponse {
	return &BlockedHWICResponse{
		ID:        b.ID,
		HWIC:      b.HWIC,
		Reason:    b.ReasonText(),
		BlockedAt: b.BlockedAt,
	}
}
