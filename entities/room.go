package entities

type RoomStatus string

const (
	RoomStatusPlaying RoomStatus = "playing" // rounds still to play
	RoomStatusEnd     RoomStatus = "end"     // last round scored
	RoomStatusClosed  RoomStatus = "closed"  // torn down
)
