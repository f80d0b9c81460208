package fixtures

func report(ready bool, count int) bool {
	if ready == true {
		return count > 0
	}
	if ready != false {
		return true
	}
	return ready == false
}
