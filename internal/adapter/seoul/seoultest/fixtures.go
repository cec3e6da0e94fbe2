package seoultest

// SampleTables returns a small, consistent snapshot of all four datasets
// keyed by upstream endpoint. 신촌 appears in every dataset under a different
// spelling; 합정 has an out-of-service escalator; 강남 has no amenity flags.
func SampleTables() map[string][]Row {
	return map[string][]Row{
		"TbSubwayLineDetail": {
			R("SBWY_STNS_NM", "신촌(2호선)", "LINE", "2호선", "CLSG_PLC", "3번 출입구", "BGNG_YMD", "20250301", "END_YMD", "20251231", "RPLC_PATH", "2번 출입구 이용"),
			R("SBWY_STNS_NM", "종로3가(1호선)", "LINE", "1호선", "CLSG_PLC", "휠체어리프트", "BGNG_YMD", "20250115", "END_YMD", "20250630", "RPLC_PATH", "엘리베이터 이용"),
		},
		"SeoulMetroFaciInfo": {
			R("STN_NM", "신촌", "ELVTR_NM", "엘리베이터 1호기", "OPR_SEC", "B1-B2", "INSTL_PSTN", "대합실", "USE_YN", "보수중"),
			R("STN_NM", "신촌", "ELVTR_NM", "에스컬레이터 2호기", "OPR_SEC", "B1-1F", "INSTL_PSTN", "4번 출구", "USE_YN", "사용가능"),
			R("STN_NM", "합정", "ELVTR_NM", "에스컬레이터 1호기", "OPR_SEC", "B2-B1", "INSTL_PSTN", "승강장", "USE_YN", "사용중지"),
			R("STN_NM", "강남", "ELVTR_NM", "엘리베이터 1호기", "OPR_SEC", "B1-1F", "INSTL_PSTN", "1번 출구", "USE_YN", "사용가능"),
		},
		"SmrtScnFcltsInfo": {
			R("SBWY_STNS_NM", "신촌(2)", "EQPMNT", "E/V", "NO", "1", "PLF_PBADMS", "15000", "OPR_SEC", "B1-B2"),
			R("SBWY_STNS_NM", "신촌(2)", "EQPMNT", "E/S", "NO", "2", "PLF_PBADMS", "미상", "OPR_SEC", "B1-1F"),
			R("SBWY_STNS_NM", "강남(2)", "EQPMNT", "E/S", "NO", "1", "PLF_PBADMS", "23500", "OPR_SEC", "B2-B1"),
		},
		"TbSeoulmetroStConve": {
			R("STATION_NAME", "신촌역", "EL", "Y", "WL", "N", "PARKING", "N", "BICYCLE", "Y", "CIM", "N", "EXCHANGE", "N", "TRAIN", "N", "CULTURE", "N", "PLACE", "N", "FDROOM", "Y"),
			R("STATION_NAME", "합정", "EL", "Y", "WL", "Y", "PARKING", "N", "BICYCLE", "N", "CIM", "Y", "EXCHANGE", "N", "TRAIN", "N", "CULTURE", "Y", "PLACE", "N", "FDROOM", "N"),
			R("STATION_NAME", "강남", "EL", "N", "WL", "N", "PARKING", "N", "BICYCLE", "N", "CIM", "N", "EXCHANGE", "N", "TRAIN", "N", "CULTURE", "N", "PLACE", "N", "FDROOM", "N"),
		},
	}
}
