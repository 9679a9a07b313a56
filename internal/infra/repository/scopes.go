package repository

import "gorm.io/gorm"

// 0以下は既定の50件。gormはLimit(0)を「0件」として出すので必ずここを通す
func page(limit, offset int) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		if limit <= 0 || limit > 200 {
			limit = 50
		}
		if offset < 0 {
			offset = 0
		}
		return q.Limit(limit).Offset(offset)
	}
}
