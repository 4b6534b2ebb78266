package memory

import (
	"time"

	"github.com/jhoicas/taxonomia-api/internal/domain/entity"
)

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneCategory(c entity.Category) *entity.Category {
	c.Description = cloneString(c.Description)
	c.DeletedAt = cloneTime(c.DeletedAt)
	c.ItemsCount = nil
	c.Items = nil
	return &c
}

func cloneItem(i entity.CatalogItem) *entity.CatalogItem {
	i.Description = cloneString(i.Description)
	i.ProductID = cloneString(i.ProductID)
	i.DeletedAt = cloneTime(i.DeletedAt)
	i.Metadata = i.Metadata.Clone()
	return &i
}

func sameProduct(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
