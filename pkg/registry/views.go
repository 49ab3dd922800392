package registry

// Denormalized read views. Every list query selects from one of these, so
// related owner/creator/vehicle rows and the aggregate counts arrive
// pre-computed per row. The SQL sticks to the portable subset shared by
// postgres, mysql and sqlite. Definition order is dependency order.
var viewDefinitions = []struct {
	name  string
	query string
}{
	{
		name: "view_users",
		query: `SELECT
	u.id AS user_id,
	u.fullname AS user_fullname,
	u.phone AS user_phone,
	u.permissions AS user_permissions,
	(SELECT COUNT(*) FROM vehicles v WHERE v.user_id = u.id) AS user_vehicles_count,
	(SELECT COUNT(*) FROM violations w
		JOIN vehicles v ON v.plate = w.vehicle_plate
		WHERE v.user_id = u.id) AS user_violations_count
FROM users u`,
	},
	{
		name: "view_vehicles",
		query: `SELECT
	v.plate AS vehicle_plate,
	(SELECT COUNT(*) FROM violations w WHERE w.vehicle_plate = v.plate) AS vehicle_violations_count,
	u.user_id,
	u.user_fullname,
	u.user_phone,
	u.user_permissions,
	u.user_vehicles_count,
	u.user_violations_count
FROM vehicles v
JOIN view_users u ON u.user_id = v.user_id`,
	},
	{
		name: "view_violations",
		query: `SELECT
	w.id AS violation_id,
	w.category AS violation_category,
	w.fine_vnd AS violation_fine_vnd,
	w.video_url AS violation_video_url,
	(SELECT COUNT(*) FROM refutations r WHERE r.violation_id = w.id) AS violation_refutations_count,
	c.user_id AS creator_id,
	c.user_fullname AS creator_fullname,
	c.user_phone AS creator_phone,
	c.user_permissions AS creator_permissions,
	c.user_vehicles_count AS creator_vehicles_count,
	c.user_violations_count AS creator_violations_count,
	vv.vehicle_plate,
	vv.vehicle_violations_count,
	vv.user_id,
	vv.user_fullname,
	vv.user_phone,
	vv.user_permissions,
	vv.user_vehicles_count,
	vv.user_violations_count
FROM violations w
JOIN view_users c ON c.user_id = w.creator_id
JOIN view_vehicles vv ON vv.vehicle_plate = w.vehicle_plate`,
	},
	{
		name: "view_refutations",
		query: `SELECT
	r.id AS refutation_id,
	r.message AS refutation_message,
	r.response AS refutation_response,
	a.user_id AS author_id,
	a.user_fullname AS author_fullname,
	a.user_phone AS author_phone,
	a.user_permissions AS author_permissions,
	a.user_vehicles_count AS author_vehicles_count,
	a.user_violations_count AS author_violations_count,
	vw.*
FROM refutations r
JOIN view_users a ON a.user_id = r.author_id
JOIN view_violations vw ON vw.violation_id = r.violation_id`,
	},
	{
		name: "view_transactions",
		query: `SELECT
	t.id AS transaction_id,
	p.user_id AS payer_id,
	p.user_fullname AS payer_fullname,
	p.user_phone AS payer_phone,
	p.user_permissions AS payer_permissions,
	p.user_vehicles_count AS payer_vehicles_count,
	p.user_violations_count AS payer_violations_count,
	vw.*
FROM transactions t
JOIN view_users p ON p.user_id = t.payer_id
JOIN view_violations vw ON vw.violation_id = t.violation_id`,
	},
	{
		name: "view_detected",
		query: `SELECT
	d.id AS detected_id,
	d.category AS detected_category,
	d.video_url AS detected_video_url,
	vv.vehicle_plate,
	vv.vehicle_violations_count,
	vv.user_id,
	vv.user_fullname,
	vv.user_phone,
	vv.user_permissions,
	vv.user_vehicles_count,
	vv.user_violations_count
FROM detected d
JOIN view_vehicles vv ON vv.vehicle_plate = d.vehicle_plate`,
	},
}
