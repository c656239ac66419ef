package kofic

// Wire types of the film catalog open API. Only the fields the collector
// reads are declared.

type listResponse struct {
	MovieListResult struct {
		TotCnt    int         `json:"totCnt"`
		MovieList []movieItem `json:"movieList"`
	} `json:"movieListResult"`
	FaultInfo *faultInfo `json:"faultInfo"`
}

type detailResponse struct {
	MovieInfoResult struct {
		MovieInfo movieInfo `json:"movieInfo"`
	} `json:"movieInfoResult"`
	FaultInfo *faultInfo `json:"faultInfo"`
}

type faultInfo struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

type person struct {
	PeopleNm string `json:"peopleNm"`
}

type company struct {
	CompanyNm string `json:"companyNm"`
}

type movieItem struct {
	MovieCd   string    `json:"movieCd"`
	MovieNm   string    `json:"movieNm"`
	PrdtYear  string    `json:"prdtYear"`
	OpenDt    string    `json:"openDt"`
	GenreAlt  string    `json:"genreAlt"`
	Directors []person  `json:"directors"`
	Companys  []company `json:"companys"`
}

type movieInfo struct {
	MovieCd   string    `json:"movieCd"`
	ShowTm    string    `json:"showTm"`
	Actors    []person  `json:"actors"`
	Directors []person  `json:"directors"`
	Companys  []company `json:"companys"`
	Genres    []struct {
		GenreNm string `json:"genreNm"`
	} `json:"genres"`
}

func names(people []person) []string {
	out := make([]string, 0, len(people))
	for _, p := range people {
		out = append(out, p.PeopleNm)
	}
	return out
}

func companyNames(companies []company) []string {
	out := make([]string, 0, len(companies))
	for _, c := range companies {
		out = append(out, c.CompanyNm)
	}
	return out
}
