package db

type Auction struct {
	ID    string
	Title string
}

type Snapshot struct {
	AuctionID   string
	Time        int64
	Price       float64
	Currency    string
	Quantity    int64
	QuantityBid int64
	Bids        int64
	Reserve     int64
	Remain      int64
	Winning     int64
	Won         int64
	ErrorKind   string
}

type BidOutcome struct {
	AuctionID string
	Time      int64
	BidPrice  string
	Quantity  int64
	Result    string
}
