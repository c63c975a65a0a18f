package fakeapi

import "github.com/dusk-indust/usermgr/internal/userapi"

func seedUser(id int, name, email, phone, website, street, city, company string) userapi.User {
	return userapi.User{
		ID:      id,
		Name:    name,
		Email:   email,
		Phone:   phone,
		Website: website,
		Address: userapi.Address{Street: street, City: city},
		Company: userapi.Company{Name: company},
	}
}

// SeedUsers returns the ten users the public demo API serves.
func SeedUsers() []userapi.User {
	return []userapi.User{
		seedUser(1, "Leanne Graham", "Sincere@april.biz", "1-770-736-8031 x56442", "hildegard.org", "Kulas Light", "Gwenborough", "Romaguera-Crona"),
		seedUser(2, "Ervin Howell", "Shanna@melissa.tv", "010-692-6593 x09125", "anastasia.net", "Victor Plains", "Wisokyburgh", "Deckow-Crist"),
		seedUser(3, "Clementine Bauch", "Nathan@yesenia.net", "1-463-123-4447", "ramiro.info", "Douglas Extension", "McKenziehaven", "Romaguera-Jacobson"),
		seedUser(4, "Patricia Lebsack", "Julianne.OConner@kory.org", "493-170-9623 x156", "kale.biz", "Hoeger Mall", "South Elvis", "Robel-Corkery"),
		seedUser(5, "Chelsey Dietrich", "Lucio_Hettinger@annie.ca", "(254)954-1289", "demarco.info", "Skiles Walks", "Roscoeview", "Keebler LLC"),
		seedUser(6, "Mrs. Dennis Schulist", "Karley_Dach@jasper.info", "1-477-935-8478 x6430", "ola.org", "Norberto Crossing", "South Christy", "Considine-Lockman"),
		seedUser(7, "Kurtis Weissnat", "Telly.Hoeger@billy.biz", "210.067.6132", "elvis.io", "Rex Trail", "Howemouth", "Johns Group"),
		seedUser(8, "Nicholas Runolfsdottir V", "Sherwood@rosamond.me", "586.493.6943 x140", "jacynthe.com", "Ellsworth Summit", "Aliyaview", "Abernathy Group"),
		seedUser(9, "Glenna Reichert", "Chaim_McDermott@dana.io", "(775)976-6794 x41206", "conrad.com", "Dayna Park", "Bartholomebury", "Yost and Sons"),
		seedUser(10, "Clementina DuBuque", "Rey.Padberg@karina.biz", "024-648-3804", "ambrose.net", "Kattie Turnpike", "Lebsackbury", "Hoeger LLC"),
	}
}
