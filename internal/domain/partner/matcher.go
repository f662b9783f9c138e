package partner

import "strings"

// MatchByName returns the first customer whose name contains the given
// fragment, comparing case-insensitively. Candidates are scanned in the
// order given, so callers decide what "first" means (storage order for
// repositories). A short fragment like "jo" may match many customers;
// only the first one wins.
func MatchByName(customers []Customer, fragment string) (*Customer, error) {
	needle := strings.ToLower(strings.TrimSpace(fragment))
	if needle == "" {
		return nil, NewCustomerNotFoundError(fragment)
	}

	for i := range customers {
		if strings.Contains(strings.ToLower(customers[i].Name), needle) {
			return &customers[i], nil
		}
	}

	return nil, NewCustomerNotFoundError(fragment)
}

// MatchByExactName returns the first customer whose name equals the given
// name, ignoring case and surrounding whitespace. Unlike MatchByName, a
// partial name never matches; this is meant for linking records, where a
// loose match would attach the wrong customer.
func MatchByExactName(customers []Customer, name string) (*Customer, bool) {
	needle := strings.TrimSpace(name)
	if needle == "" {
		return nil, false
	}

	for i := range customers {
		if strings.EqualFold(strings.TrimSpace(customers[i].Name), needle) {
			return &customers[i], true
		}
	}

	return nil, false
}
