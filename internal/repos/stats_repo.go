package repos

import (
	"github.com/jmoiron/sqlx"

	"quickclean/internal/domain"
)

type StatsRepo struct{ db *sqlx.DB }

func NewStatsRepo(db *sqlx.DB) *StatsRepo { return &StatsRepo{db: db} }

// ReactProduct bumps the like or dislike counter for productID, creating the
// row on first use.
func (r *StatsRepo) ReactProduct(productID string, like bool) (*domain.ProductStats, error) {
	likes, dislikes := split(like)
	var s domain.ProductStats
	err := r.db.Get(&s, r.db.Rebind(`
		INSERT INTO product_stats(product_id, likes, dislikes, updated_at)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
		  likes = product_stats.likes + excluded.likes,
		  dislikes = product_stats.dislikes + excluded.dislikes,
		  updated_at = excluded.updated_at
		RETURNING product_id, likes, dislikes, updated_at
	`), productID, likes, dislikes, now())
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StatsRepo) ReactStore(storeID string, like bool) (*domain.StoreStats, error) {
	likes, dislikes := split(like)
	var s domain.StoreStats
	err := r.db.Get(&s, r.db.Rebind(`
		INSERT INTO store_stats(store_id, likes, dislikes, completed_orders, updated_at)
		VALUES(?, ?, ?, 0, ?)
		ON CONFLICT(store_id) DO UPDATE SET
		  likes = store_stats.likes + excluded.likes,
		  dislikes = store_stats.dislikes + excluded.dislikes,
		  updated_at = excluded.updated_at
		RETURNING store_id, likes, dislikes, completed_orders, updated_at
	`), storeID, likes, dislikes, now())
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ProductStats returns zero counters for a product nobody reacted to yet.
func (r *StatsRepo) ProductStats(productID string) (*domain.ProductStats, error) {
	s := domain.ProductStats{ProductID: productID}
	err := r.db.Get(&s, r.db.Rebind(`SELECT product_id, likes, dislikes, updated_at FROM product_stats WHERE product_id = ?`), productID)
	if err != nil && !isNoRows(err) {
		return nil, err
	}
	return &s, nil
}

func (r *StatsRepo) StoreStats(storeID string) (*domain.StoreStats, error) {
	s := domain.StoreStats{StoreID: storeID}
	err := r.db.Get(&s, r.db.Rebind(`SELECT store_id, likes, dislikes, completed_orders, updated_at FROM store_stats WHERE store_id = ?`), storeID)
	if err != nil && !isNoRows(err) {
		return nil, err
	}
	return &s, nil
}

func split(like bool) (int, int) {
	if like {
		return 1, 0
	}
	return 0, 1
}

// CompleteOrder credits storeID with bookingID's completion. A booking is
// credited at most once, however often it re-enters completed; the returned
// bool reports whether this call did the crediting.
func (r *StatsRepo) CompleteOrder(storeID, bookingID string) (bool, error) {
	tx, err := r.db.Beginx()
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	res, err := tx.Exec(tx.Rebind(`
		INSERT INTO store_credits(booking_id, store_id, created_at)
		VALUES(?, ?, ?)
		ON CONFLICT(booking_id) DO NOTHING
	`), bookingID, storeID, ts)
	if err != nil {
		return false, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}
	if _, err := tx.Exec(tx.Rebind(`
		INSERT INTO store_stats(store_id, likes, dislikes, completed_orders, updated_at)
		VALUES(?, 0, 0, 1, ?)
		ON CONFLICT(store_id) DO UPDATE SET
		  completed_orders = store_stats.completed_orders + 1,
		  updated_at = excluded.updated_at
	`), storeID, ts); err != nil {
		return false, err
	}
	return true, tx.Commit()
}
