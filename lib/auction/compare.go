package auction

// Compare orders auctions for sniping: auctions currently being won go
// first, then the earliest ending, then the cheapest.
func Compare(a, b *Auction) int {
	if a.ID == b.ID {
		return 0
	}
	if a.Winning != b.Winning {
		if a.Winning > b.Winning {
			return -1
		}
		return 1
	}
	if a.EndUnix() == b.EndUnix() {
		ac := Cents(a.Price)
		bc := Cents(b.Price)
		switch {
		case ac < bc:
			return -1
		case ac > bc:
			return 1
		}
		return 0
	}
	if a.EndUnix() < b.EndUnix() {
		return -1
	}
	return 1
}

// BidQuantity is the number of items to bid on. On a multi item auction
// it never takes the whole lot.
func BidQuantity(want, available int) int {
	if want == 1 || available == 1 {
		return 1
	}
	if available > want {
		return want
	}
	return available - 1
}
