package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/veliashev/shopcore/internal/core/domain"
)

func (r *Repository) GetCustomer(ctx context.Context, workspaceID, customerID uint64) (*domain.Customer, error) {
	statement := r.db.QueryBuilder.
		Select("id", "workspace_id", "name", "email", "phone", "orders_count", "total_spent").
		From("customers").
		Where(sq.Eq{"id": customerID, "workspace_id": workspaceID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	c := domain.Customer{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&c.ID, &c.WorkspaceID, &c.Name, &c.Email, &c.Phone, &c.OrdersCount, &c.TotalSpent,
	)
	if err != nil {
		return nil, notFound(err, domain.ErrCustomerNotFound)
	}
	return &c, nil
}

func (r *Repository) GetVariant(ctx context.Context, workspaceID, variantID uint64) (*domain.ProductVariant, error) {
	statement := r.db.QueryBuilder.
		Select("id", "workspace_id", "product_id", "sku", "name", "category",
			"images", "price", "shipping_package_id").
		From("product_variants").
		Where(sq.Eq{"id": variantID, "workspace_id": workspaceID})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	v := domain.ProductVariant{}
	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&v.ID, &v.WorkspaceID, &v.ProductID, &v.SKU, &v.Name, &v.Category,
		&v.Images, &v.Price, &v.ShippingPackageID,
	)
	if err != nil {
		return nil, notFound(err, domain.ErrProductNotFound)
	}
	return &v, nil
}
