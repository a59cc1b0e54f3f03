package mysql

const insertHotelSQL = `
INSERT INTO hotels (name, location, total_rooms, star_rating)
VALUES (?, ?, ?, ?)
`

const getHotelSQL = `
SELECT id, name, location, total_rooms, star_rating, created_at
FROM hotels
WHERE id = ?
`

const getHotelByNameSQL = `
SELECT id, name, location, total_rooms, star_rating, created_at
FROM hotels
WHERE name = ?
`

const listHotelsSQL = `
SELECT id, name, location, total_rooms, star_rating, created_at
FROM hotels
ORDER BY id
LIMIT ? OFFSET ?
`

const deleteHotelSQL = `DELETE FROM hotels WHERE id = ?`

const insertRoomSQL = `
INSERT INTO rooms (hotel_id, room_number, room_type, base_price, max_occupancy, is_available)
VALUES (?, ?, ?, ?, ?, ?)
`

const getRoomSQL = `
SELECT id, hotel_id, room_number, room_type, base_price, max_occupancy, is_available
FROM rooms
WHERE id = ?
`

const insertBookingSQL = `
INSERT INTO bookings
  (hotel_id, room_id, check_in_date, check_out_date, guest_name, guest_email,
   num_guests, booking_price, base_price, booking_date, booking_source, status)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(?, CURRENT_TIMESTAMP), ?, ?)
`

// Multi-row prefix for batch loads. id=id makes a duplicate slot a no-op so
// RowsAffected counts only fresh inserts.
const insertBookingsPrefix = `INSERT INTO bookings
  (hotel_id, room_id, check_in_date, check_out_date, guest_name, guest_email,
   num_guests, booking_price, base_price, booking_date, booking_source, status)
VALUES `

const insertBookingsOnDup = ` ON DUPLICATE KEY UPDATE id = id`

const getBookingSQL = `
SELECT id, hotel_id, room_id, check_in_date, check_out_date, guest_name, guest_email,
       num_guests, booking_price, base_price, booking_date, booking_source, status
FROM bookings
WHERE id = ?
`

const updateBookingStatusSQL = `UPDATE bookings SET status = ? WHERE id = ?`

// daily_metrics is keyed on (hotel_id, date); recalculation overwrites.
const upsertDailyMetricsSQL = `
INSERT INTO daily_metrics
  (hotel_id, date, occupancy_rate, rooms_occupied, rooms_available,
   total_revenue, average_daily_rate, revenue_per_available_room,
   booking_count, cancellation_count)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  occupancy_rate             = VALUES(occupancy_rate),
  rooms_occupied             = VALUES(rooms_occupied),
  rooms_available            = VALUES(rooms_available),
  total_revenue              = VALUES(total_revenue),
  average_daily_rate         = VALUES(average_daily_rate),
  revenue_per_available_room = VALUES(revenue_per_available_room),
  booking_count              = VALUES(booking_count),
  cancellation_count         = VALUES(cancellation_count),
  calculated_at              = CURRENT_TIMESTAMP
`

const listDailyMetricsSQL = `
SELECT id, hotel_id, date, occupancy_rate, rooms_occupied, rooms_available,
       total_revenue, average_daily_rate, revenue_per_available_room,
       booking_count, cancellation_count, calculated_at
FROM daily_metrics
WHERE hotel_id = ? AND date BETWEEN ? AND ?
ORDER BY date
`

const bookingDateBoundsSQL = `
SELECT MIN(check_in_date), MAX(check_out_date) FROM bookings
`
