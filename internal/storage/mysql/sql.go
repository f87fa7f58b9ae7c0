package mysql

const upsertOrderSQL = `
INSERT INTO orders
  (id, status, experience_name, traveler_name, traveler_email, total_amount, currency)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  status          = VALUES(status),
  experience_name = COALESCE(NULLIF(VALUES(experience_name), ''), orders.experience_name),
  traveler_name   = VALUES(traveler_name),
  traveler_email  = VALUES(traveler_email),
  total_amount    = COALESCE(VALUES(total_amount), orders.total_amount),
  currency        = COALESCE(VALUES(currency), orders.currency),
  updated_at      = CURRENT_TIMESTAMP
`

const listOrdersSQL = `
SELECT id, status, experience_name, traveler_name, traveler_email,
       total_amount, currency, created_at, updated_at
FROM orders
ORDER BY created_at DESC, id DESC
LIMIT ?
`

const listOrderIDsSQL = `
SELECT id FROM orders ORDER BY created_at DESC
`
