package catalog

import (
	"time"

	"github.com/jacentio/catalog/store"
)

// Logical table names.
const (
	BrandsTable     = "brands"
	CategoriesTable = "categories"
	ProductsTable   = "products"
	UsersTable      = "users"
)

// DefaultImage is assigned to products created without an image.
const DefaultImage = "https://placehold.co/600x400?text=Product"

// Brand is a product manufacturer.
type Brand struct {
	ID          ID        `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	BrandName   string    `json:"brandName" dynamodbav:"brandName" gorm:"column:brandName;not null"`
	Description string    `json:"description" dynamodbav:"description" gorm:"column:description;not null"`
	Active      bool      `json:"active" dynamodbav:"active" gorm:"column:active"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"createdAt" gorm:"column:createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updatedAt"`
}

func (Brand) TableName() string        { return BrandsTable }
func (Brand) EntityType() string       { return "brand" }
func (b Brand) EntityRef() string      { return "brand#" + string(b.ID) }
func (b Brand) GetID() string          { return string(b.ID) }
func (b Brand) WithID(id string) Brand { b.ID = ID(id); return b }

// Category groups products.
type Category struct {
	ID           ID        `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	CategoryName string    `json:"categoryName" dynamodbav:"categoryName" gorm:"column:categoryName;not null"`
	Description  string    `json:"description" dynamodbav:"description" gorm:"column:description;not null"`
	Active       bool      `json:"active" dynamodbav:"active" gorm:"column:active"`
	CreatedAt    time.Time `json:"createdAt" dynamodbav:"createdAt" gorm:"column:createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updatedAt"`
}

func (Category) TableName() string           { return CategoriesTable }
func (Category) EntityType() string          { return "category" }
func (c Category) EntityRef() string         { return "category#" + string(c.ID) }
func (c Category) GetID() string             { return string(c.ID) }
func (c Category) WithID(id string) Category { c.ID = ID(id); return c }

// Product is a sellable item. CategoryID and BrandID are foreign keys.
type Product struct {
	ID          ID        `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	ProductName string    `json:"productName" dynamodbav:"productName" gorm:"column:productName;not null"`
	Description string    `json:"description" dynamodbav:"description" gorm:"column:description;not null"`
	Price       float64   `json:"price" dynamodbav:"price" gorm:"column:price"`
	Image       string    `json:"image" dynamodbav:"image" gorm:"column:image"`
	Stock       int       `json:"stock" dynamodbav:"stock" gorm:"column:stock"`
	CategoryID  ID        `json:"categoryId" dynamodbav:"categoryId" gorm:"column:categoryId;index"`
	BrandID     ID        `json:"brandId" dynamodbav:"brandId" gorm:"column:brandId;index"`
	CreatedAt   time.Time `json:"createdAt" dynamodbav:"createdAt" gorm:"column:createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updatedAt"`
}

func (Product) TableName() string          { return ProductsTable }
func (Product) EntityType() string         { return "product" }
func (p Product) EntityRef() string        { return "product#" + string(p.ID) }
func (p Product) GetID() string            { return string(p.ID) }
func (p Product) WithID(id string) Product { p.ID = ID(id); return p }

// ParentChecks requires the referenced brand and category to exist.
func (p Product) ParentChecks() []store.ConditionCheck {
	return []store.ConditionCheck{
		{TableName: BrandsTable, ID: string(p.BrandID)},
		{TableName: CategoriesTable, ID: string(p.CategoryID)},
	}
}

// User is an account. Passwords are stored as given and never serialised to JSON.
type User struct {
	ID        ID        `json:"id" dynamodbav:"id" gorm:"column:id;primaryKey"`
	Name      string    `json:"name" dynamodbav:"name" gorm:"column:name;not null"`
	Username  string    `json:"username" dynamodbav:"username" gorm:"column:username;uniqueIndex;not null"`
	Password  string    `json:"-" dynamodbav:"password" gorm:"column:password;not null"`
	CreatedAt time.Time `json:"createdAt" dynamodbav:"createdAt" gorm:"column:createdAt"`
	UpdatedAt time.Time `json:"updatedAt" dynamodbav:"updatedAt" gorm:"column:updatedAt"`
}

func (User) TableName() string       { return UsersTable }
func (User) EntityType() string      { return "user" }
func (u User) EntityRef() string     { return "user#" + string(u.ID) }
func (u User) GetID() string         { return string(u.ID) }
func (u User) WithID(id string) User { u.ID = ID(id); return u }

// UniqueFields makes usernames unique across users.
func (u User) UniqueFields() map[string]string {
	return map[string]string{"username": u.Username}
}

// BrandInput carries brand fields; nil means not supplied.
type BrandInput struct {
	BrandName   *string `json:"brandName"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// CategoryInput carries category fields; nil means not supplied.
type CategoryInput struct {
	CategoryName *string `json:"categoryName"`
	Description  *string `json:"description"`
	Active       *bool   `json:"active"`
}

// ProductInput carries product fields; nil means not supplied.
type ProductInput struct {
	ProductName *string  `json:"productName"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Image       *string  `json:"image"`
	Stock       *int     `json:"stock"`
	CategoryID  *ID      `json:"categoryId"`
	BrandID     *ID      `json:"brandId"`
}

// UserInput carries user fields; nil means not supplied.
type UserInput struct {
	Name     *string `json:"name"`
	Username *string `json:"username"`
	Password *string `json:"password"`
}

// BrandSummary is the brand's display fields embedded in ProductDetails.
type BrandSummary struct {
	ID          ID     `json:"id"`
	BrandName   string `json:"brandName"`
	Description string `json:"description"`
}

// CategorySummary is the category's display fields embedded in ProductDetails.
type CategorySummary struct {
	ID           ID     `json:"id"`
	CategoryName string `json:"categoryName"`
	Description  string `json:"description"`
}

// ProductDetails is a product with its brand and category resolved.
// Brand or Category is nil when the reference no longer resolves.
type ProductDetails struct {
	Product
	Brand    *BrandSummary    `json:"brand"`
	Category *CategorySummary `json:"category"`
}
