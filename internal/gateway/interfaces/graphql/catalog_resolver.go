package graphql

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/shopspring/decimal"
	authdomain "github.com/wyfcoding/storefront/internal/auth/domain"
	catalogapp "github.com/wyfcoding/storefront/internal/catalog/application"
	catalogdomain "github.com/wyfcoding/storefront/internal/catalog/domain"
	userdomain "github.com/wyfcoding/storefront/internal/user/domain"
	"github.com/wyfcoding/storefront/pkg/errorx"
	"github.com/wyfcoding/storefront/pkg/utils"
)

type createCategoryInput struct {
	Name          string
	NameEn        *string
	Description   *string
	DescriptionEn *string
	Image         *string
	Active        *bool
}

type updateCategoryInput struct {
	Name          *string
	NameEn        *string
	Description   *string
	DescriptionEn *string
	Image         *string
	Active        *bool
}

type createProductInput struct {
	Name          string
	NameEn        *string
	Price         Decimal
	Description   *string
	DescriptionEn *string
	Images        *[]string
	Stock         int32
	Featured      *bool
	Active        *bool
	CategoryID    graphql.ID
}

type updateProductInput struct {
	Name          *string
	NameEn        *string
	Price         *Decimal
	Description   *string
	DescriptionEn *string
	Images        *[]string
	Featured      *bool
	Active        *bool
	CategoryID    *graphql.ID
}

type productFilterInput struct {
	CategoryID *graphql.ID
	Featured   *bool
	Active     *bool
	Search     *string
}

func requireAdmin(ctx context.Context) error {
	_, err := authdomain.RequireRole(ctx, userdomain.RoleAdmin)
	return err
}

// Categories 分类列表，非管理员只能看到启用的分类
func (r *Resolver) Categories(ctx context.Context, args struct{ ActiveOnly *bool }) ([]*CategoryResolver, error) {
	activeOnly := utils.Deref(args.ActiveOnly) || !authdomain.IdentityFrom(ctx).IsAdmin()
	categories, err := r.catalog.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]*CategoryResolver, len(categories))
	for i, c := range categories {
		out[i] = &CategoryResolver{c: c}
	}
	return out, nil
}

// Category 查询分类
func (r *Resolver) Category(ctx context.Context, args struct{ ID graphql.ID }) (*CategoryResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	c, err := r.catalog.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Active && !authdomain.IdentityFrom(ctx).IsAdmin() {
		return nil, errorx.NotFound("category %d not found", id)
	}
	return &CategoryResolver{c: c}, nil
}

// Products 商品分页列表，非管理员只能看到上架商品
func (r *Resolver) Products(ctx context.Context, args struct {
	Filter   *productFilterInput
	Page     *int32
	PageSize *int32
}) (*ProductPageResolver, error) {
	var filter catalogdomain.ProductFilter
	if f := args.Filter; f != nil {
		categoryID, err := parseOptionalID(f.CategoryID)
		if err != nil {
			return nil, err
		}
		filter = catalogdomain.ProductFilter{
			CategoryID: categoryID,
			Featured:   f.Featured,
			Active:     f.Active,
			Search:     utils.Deref(f.Search),
		}
	}
	if !authdomain.IdentityFrom(ctx).IsAdmin() {
		filter.Active = utils.Ptr(true)
	}

	page, size := pageValues(args.Page, args.PageSize)
	products, total, err := r.catalog.ListProducts(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}
	p := utils.NewPagination(page, size)
	return &ProductPageResolver{
		items:    products,
		total:    total,
		page:     int32(p.Page),
		pageSize: int32(p.PageSize),
	}, nil
}

// Product 查询商品
func (r *Resolver) Product(ctx context.Context, args struct{ ID graphql.ID }) (*ProductResolver, error) {
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	p, err := r.catalog.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active && !authdomain.IdentityFrom(ctx).IsAdmin() {
		return nil, errorx.NotFound("product %d not found", id)
	}
	return &ProductResolver{p: p}, nil
}

// FeaturedProducts 推荐商品
func (r *Resolver) FeaturedProducts(ctx context.Context, args struct{ Limit *int32 }) ([]*ProductResolver, error) {
	products, err := r.catalog.FeaturedProducts(ctx, int(utils.Deref(args.Limit)))
	if err != nil {
		return nil, err
	}
	return productsOf(products), nil
}

// CreateCategory 创建分类
func (r *Resolver) CreateCategory(ctx context.Context, args struct{ Input *createCategoryInput }) (*CategoryResolver, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	in := args.Input
	c, err := r.catalog.CreateCategory(ctx, catalogapp.CreateCategoryCommand{
		Name:          in.Name,
		NameEn:        utils.Deref(in.NameEn),
		Description:   utils.Deref(in.Description),
		DescriptionEn: utils.Deref(in.DescriptionEn),
		Image:         utils.Deref(in.Image),
		Active:        in.Active,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryResolver{c: c}, nil
}

// UpdateCategory 更新分类
func (r *Resolver) UpdateCategory(ctx context.Context, args struct {
	ID    graphql.ID
	Input *updateCategoryInput
}) (*CategoryResolver, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	in := args.Input
	c, err := r.catalog.UpdateCategory(ctx, catalogapp.UpdateCategoryCommand{
		ID:            id,
		Name:          in.Name,
		NameEn:        in.NameEn,
		Description:   in.Description,
		DescriptionEn: in.DescriptionEn,
		Image:         in.Image,
		Active:        in.Active,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryResolver{c: c}, nil
}

// RemoveCategory 删除分类
func (r *Resolver) RemoveCategory(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := requireAdmin(ctx); err != nil {
		return false, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return false, err
	}
	if err := r.catalog.RemoveCategory(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// CreateProduct 创建商品
func (r *Resolver) CreateProduct(ctx context.Context, args struct{ Input *createProductInput }) (*ProductResolver, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	in := args.Input
	categoryID, err := parseID(in.CategoryID)
	if err != nil {
		return nil, err
	}
	p, err := r.catalog.CreateProduct(ctx, catalogapp.CreateProductCommand{
		Name:          in.Name,
		NameEn:        utils.Deref(in.NameEn),
		Description:   utils.Deref(in.Description),
		DescriptionEn: utils.Deref(in.DescriptionEn),
		Price:         in.Price.Value(),
		Images:        utils.Deref(in.Images),
		Stock:         int(in.Stock),
		Featured:      utils.Deref(in.Featured),
		Active:        in.Active,
		CategoryID:    categoryID,
	})
	if err != nil {
		return nil, err
	}
	return &ProductResolver{p: p}, nil
}

// UpdateProduct 更新商品，库存通过 updateStock 调整
func (r *Resolver) UpdateProduct(ctx context.Context, args struct {
	ID    graphql.ID
	Input *updateProductInput
}) (*ProductResolver, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	in := args.Input
	categoryID, err := parseOptionalID(in.CategoryID)
	if err != nil {
		return nil, err
	}

	var price *decimal.Decimal
	if in.Price != nil {
		price = utils.Ptr(in.Price.Value())
	}
	var images []string
	if in.Images != nil {
		images = *in.Images
		if images == nil {
			images = []string{}
		}
	}

	p, err := r.catalog.UpdateProduct(ctx, catalogapp.UpdateProductCommand{
		ID:            id,
		Name:          in.Name,
		NameEn:        in.NameEn,
		Description:   in.Description,
		DescriptionEn: in.DescriptionEn,
		Price:         price,
		Images:        images,
		Featured:      in.Featured,
		Active:        in.Active,
		CategoryID:    categoryID,
	})
	if err != nil {
		return nil, err
	}
	return &ProductResolver{p: p}, nil
}

// RemoveProduct 删除商品
func (r *Resolver) RemoveProduct(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if err := requireAdmin(ctx); err != nil {
		return false, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return false, err
	}
	if err := r.catalog.RemoveProduct(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateStock 按增量调整库存
func (r *Resolver) UpdateStock(ctx context.Context, args struct {
	ID       graphql.ID
	Quantity int32
}) (*ProductResolver, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	id, err := parseID(args.ID)
	if err != nil {
		return nil, err
	}
	p, err := r.catalog.AdjustStock(ctx, id, int(args.Quantity))
	if err != nil {
		return nil, err
	}
	return &ProductResolver{p: p}, nil
}
