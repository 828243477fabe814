package corpus

// Sample returns the built-in Süper Lig corpus. It covers the league itself
// and the best known clubs, and is used when no corpus file or URL is
// configured so the pipeline works out of the box.
func Sample() []Record {
	return []Record{
		{
			Title: "Süper Lig",
			Text:  "Süper Lig, Türkiye'nin en üst düzey futbol ligidir. 1959 yılında kurulmuştur ve 20 takımdan oluşur. Galatasaray, Fenerbahçe ve Beşiktaş en başarılı takımlardır. Ligde şu takımlar bulunmaktadır: Galatasaray, Fenerbahçe, Beşiktaş, Trabzonspor, Başakşehir, Alanyaspor, Antalyaspor, Gaziantep FK, Hatayspor, İstanbulspor, Kayserispor, Konyaspor, Pendikspor, Rizespor, Sivasspor, Adana Demirspor, Fatih Karagümrük, Kasımpaşa, Kayseri Erciyesspor ve Ankaragücü.",
			URL:   "https://tr.wikipedia.org/wiki/S%C3%BCper_Lig",
		},
		{
			Title: "Galatasaray SK",
			Text:  "Galatasaray Spor Kulübü, 1905 yılında kurulmuş İstanbul merkezli spor kulübüdür. En başarılı Türk futbol kulübüdür. Sarı-kırmızı renklerini kullanır. Ali Sami Yen Spor Kompleksi'nde oynar. Avrupa'da en başarılı Türk takımıdır. UEFA Kupası ve Süper Kupa kazanmıştır.",
			URL:   "https://tr.wikipedia.org/wiki/Galatasaray_SK",
		},
		{
			Title: "Fenerbahçe SK",
			Text:  "Fenerbahçe Spor Kulübü, 1907 yılında kurulmuş İstanbul merkezli spor kulübüdür. Sarı-lacivert renklerini kullanır. Kadıköy'de bulunur. Şükrü Saraçoğlu Stadyumu'nda oynar. Türkiye'nin en büyük taraftar kitlesine sahip kulüplerinden biridir.",
			URL:   "https://tr.wikipedia.org/wiki/Fenerbah%C3%A7e_SK",
		},
		{
			Title: "Beşiktaş JK",
			Text:  "Beşiktaş Jimnastik Kulübü, 1903 yılında kurulmuş İstanbul merkezli spor kulübüdür. Siyah-beyaz renklerini kullanır. Beşiktaş ilçesinde bulunur. Vodafone Park'ta oynar. Kara Kartallar lakabıyla bilinir.",
			URL:   "https://tr.wikipedia.org/wiki/Be%C5%9Fikta%C5%9F_JK",
		},
		{
			Title: "Trabzonspor",
			Text:  "Trabzonspor, 1967 yılında kurulmuş Trabzon merkezli futbol kulübüdür. Bordo-mavi renklerini kullanır. Karadeniz bölgesinin en başarılı takımıdır. Medical Park Stadyumu'nda oynar. Bordo Mavi renkleriyle tanınır.",
			URL:   "https://tr.wikipedia.org/wiki/Trabzonspor",
		},
		{
			Title: "Başakşehir FK",
			Text:  "Medipol Başakşehir Futbol Kulübü, 1990 yılında kurulmuş İstanbul merkezli futbol kulübüdür. Turuncu-lacivert renklerini kullanır. Başakşehir Fatih Terim Stadyumu'nda oynar. 2019-20 sezonunda ilk kez Süper Lig şampiyonu olmuştur.",
			URL:   "https://tr.wikipedia.org/wiki/Başakşehir_FK",
		},
		{
			Title: "Alanyaspor",
			Text:  "Alanyaspor, 1948 yılında kurulmuş Antalya merkezli futbol kulübüdür. Kırmızı-beyaz renklerini kullanır. Bahçeşehir Okulları Stadyumu'nda oynar. Akdeniz bölgesinin önemli takımlarından biridir.",
			URL:   "https://tr.wikipedia.org/wiki/Alanyaspor",
		},
		{
			Title: "Antalyaspor",
			Text:  "Antalyaspor, 1966 yılında kurulmuş Antalya merkezli futbol kulübüdür. Kırmızı-beyaz renklerini kullanır. Antalya Stadyumu'nda oynar. Akdeniz bölgesinin köklü kulüplerinden biridir.",
			URL:   "https://tr.wikipedia.org/wiki/Antalyaspor",
		},
		{
			Title: "Gaziantep FK",
			Text:  "Gaziantep Futbol Kulübü, 1988 yılında kurulmuş Gaziantep merkezli futbol kulübüdür. Kırmızı-siyah renklerini kullanır. Kalyon Stadyumu'nda oynar. Güneydoğu Anadolu bölgesinin önemli takımlarından biridir.",
			URL:   "https://tr.wikipedia.org/wiki/Gaziantep_FK",
		},
		{
			Title: "Hatayspor",
			Text:  "Hatayspor, 1967 yılında kurulmuş Hatay merkezli futbol kulübüdür. Kırmızı-beyaz renklerini kullanır. Yeni Hatay Stadyumu'nda oynar. Akdeniz bölgesinin köklü kulüplerinden biridir.",
			URL:   "https://tr.wikipedia.org/wiki/Hatayspor",
		},
	}
}
