package model

// Role is the authorization role attached to a user. Authorization decisions
// elsewhere key off this field.
type Role string

const (
	RoleUser   Role = "USER"
	RoleVendor Role = "VENDOR"
	RoleAdmin  Role = "ADMIN"
)

// User is the server-held credential record. The password hash never leaves
// the verification step; outward-facing code works with Identity instead.
type User struct {
	Id       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Email    string `json:"email" gorm:"uniqueIndex"`
	Name     string `json:"name"`
	Password string `json:"-"`
	Role     Role   `json:"role" gorm:"default:USER"`
	External bool   `json:"external"` // credentials verified against the directory, not the local hash
}

// Identity is the minimized projection of a user exposed outward.
type Identity struct {
	Id    int    `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// Identity returns the minimized projection of the user.
func (u *User) Identity() *Identity {
	return &Identity{
		Id:    u.Id,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// Listing is a vendor-owned storefront listing.
type Listing struct {
	Id          int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	VendorId    int    `json:"vendorId" form:"vendorId"`
	Sid         string `json:"sid" gorm:"uniqueIndex"` // stable public identifier
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	PriceCents  int64  `json:"priceCents" form:"priceCents"`
	Currency    string `json:"currency" form:"currency" gorm:"default:USD"`
	Enable      bool   `json:"enable" form:"enable"`
	CreatedAt   int64  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt   int64  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// SavedListing marks a listing saved by a user. A (user, listing) pair is
// saved at most once.
type SavedListing struct {
	Id        int   `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int   `json:"userId" gorm:"uniqueIndex:idx_saved_user_listing"`
	ListingId int   `json:"listingId" gorm:"uniqueIndex:idx_saved_user_listing"`
	CreatedAt int64 `json:"createdAt" gorm:"autoCreateTime"`
}

// Referral is a partner referral code with its accumulated counters.
type Referral struct {
	Id      int    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId  int    `json:"userId" gorm:"uniqueIndex"`
	Code    string `json:"code" gorm:"uniqueIndex"`
	Visits  int64  `json:"visits" gorm:"default:0"`
	Signups int64  `json:"signups" gorm:"default:0"`
}

// KYC record status values.
const (
	KycPending  = "PENDING"
	KycApproved = "APPROVED"
	KycRejected = "REJECTED"
)

// KycRecord is a vendor verification record dependent on its owning user.
// Records whose owner has been deleted are orphans and get reclaimed by the
// reconciliation job.
type KycRecord struct {
	Id        int    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId    int    `json:"userId"`
	Status    string `json:"status"`
	Document  string `json:"document"`
	CreatedAt int64  `json:"createdAt" gorm:"autoCreateTime"`
}

// Setting is a key/value application setting row.
type Setting struct {
	Id    int    `json:"id" form:"id" gorm:"primaryKey;autoIncrement"`
	Key   string `json:"key" form:"key"`
	Value string `json:"value" form:"value"`
}
