package dateutil

// AgeInYear calculates the age reached during a calendar year by a person
// born in birthYear. Ages are whole years, one increment per calendar year.
func AgeInYear(birthYear, year int) int {
	return year - birthYear
}

// YearForAge calculates the calendar year in which a person born in
// birthYear reaches the given age.
func YearForAge(birthYear, age int) int {
	return birthYear + age
}

// SpanYears calculates the number of calendar years covered by the
// inclusive range [startYear, endYear]. An inverted range is empty.
func SpanYears(startYear, endYear int) int {
	if endYear < startYear {
		return 0
	}
	return endYear - startYear + 1
}

// Years returns the ordered calendar years of the inclusive range
// [startYear, endYear]. An inverted range yields an empty slice.
func Years(startYear, endYear int) []int {
	n := SpanYears(startYear, endYear)
	years := make([]int, 0, n)
	for y := startYear; y <= endYear; y++ {
		years = append(years, y)
	}
	return years
}

// InAgeWindow checks whether age falls within the inclusive window
// [startAge, endAge].
func InAgeWindow(age, startAge, endAge int) bool {
	return age >= startAge && age <= endAge
}
